package usecases

import (
	"strings"

	"easy_admin/internal/entities"
)

const (
	TaxIDLength    = 14
	MinPhoneDigits = 10
	MaxPhoneDigits = 11
)

// NormalizeDigits strips every non-digit character.
func NormalizeDigits(input string) string {
	var sb strings.Builder
	sb.Grow(len(input))
	for i := 0; i < len(input); i++ {
		if c := input[i]; c >= '0' && c <= '9' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// ValidateTaxID normalizes raw to digits, keeps at most the first 14 and
// accepts only a full 14-digit result.
func ValidateTaxID(raw string) (string, error) {
	digits := NormalizeDigits(raw)
	if len(digits) > TaxIDLength {
		digits = digits[:TaxIDLength]
	}
	if len(digits) != TaxIDLength {
		return "", entities.ErrInvalidTaxID
	}
	return digits, nil
}

func ValidatePhone(raw string) (string, error) {
	digits := NormalizeDigits(raw)
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		return "", entities.ErrInvalidPhone
	}
	return digits, nil
}

// ValidatePhoneList returns the valid phones of rawList, normalized and
// de-duplicated in first-seen order. Invalid entries are dropped silently;
// the list fails only when nothing valid remains.
func ValidatePhoneList(rawList []string) ([]string, error) {
	phones := normalizePhoneSet(rawList)
	if len(phones) == 0 {
		return nil, entities.ErrNoValidPhones
	}
	return phones, nil
}

func ValidateCompanyName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", entities.ErrEmptyName
	}
	return name, nil
}

// FormatTaxID renders a 14-digit tax id as 00.000.000/0000-00. Other input is
// returned unchanged.
func FormatTaxID(taxID string) string {
	if len(taxID) != TaxIDLength || NormalizeDigits(taxID) != taxID {
		return taxID
	}
	return taxID[0:2] + "." + taxID[2:5] + "." + taxID[5:8] + "/" + taxID[8:12] + "-" + taxID[12:14]
}

func normalizePhoneSet(rawList []string) []string {
	seen := make(map[string]struct{}, len(rawList))
	phones := make([]string, 0, len(rawList))
	for _, raw := range rawList {
		phone, err := ValidatePhone(raw)
		if err != nil {
			continue
		}
		if _, ok := seen[phone]; ok {
			continue
		}
		seen[phone] = struct{}{}
		phones = append(phones, phone)
	}
	return phones
}
