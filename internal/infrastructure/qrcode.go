package infrastructure

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRCodePNG renders the payload as a PNG QR code
func QRCodePNG(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty QR payload")
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode QR: %w", err)
	}
	return png, nil
}
