package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"
)

// normalizeEmail canonicalizes an address for storage and comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// deriveNameFromEmail turns "jane.doe@corp.com" into "Jane Doe" for
// provisional accounts created during enrollment.
func deriveNameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Candidate"
	}
	for i, p := range parts {
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

// randomPassword returns an unguessable placeholder password for
// provisional accounts; candidates never log in with it.
func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomSlug returns a short URL-safe identifier.
func randomSlug(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(slugAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate slug: %w", err)
		}
		out[i] = slugAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// generateOTP returns a six digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
