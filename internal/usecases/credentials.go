package usecases

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"easy_admin/internal/entities"

	"github.com/google/uuid"
)

// GenerateCredentials creates the integration credentials handed to a new
// company: an API token, a public app key and a random app secret.
func GenerateCredentials() (entities.Credentials, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return entities.Credentials{}, fmt.Errorf("could not generate app secret: %w", err)
	}
	return entities.Credentials{
		APIToken:  strings.ReplaceAll(uuid.NewString(), "-", ""),
		AppKey:    "easy_" + uuid.NewString(),
		AppSecret: base64.RawURLEncoding.EncodeToString(buf),
	}, nil
}
