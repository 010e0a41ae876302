package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid invite token")
	ErrExpiredToken     = errors.New("invite token expired")
	ErrDecryptionFailed = errors.New("invite token decryption failed")
)

// InviteTTL is the signature lifetime of a freshly issued invite link.
const InviteTTL = 60 * time.Minute

// InviteClaims is the signed payload carried inside an invite link.
// The jti is unique per issued invite and is the handle for one-time
// use: the service stores only its SHA-256 hash.
type InviteClaims struct {
	TestID      uint `json:"testId"`
	CandidateID uint `json:"candidateId"`
	jwt.RegisteredClaims
}

// Codec signs invite claims with HMAC-SHA256 and wraps the compact JWT
// in a JWE envelope (direct A256GCM) so the link carries no readable
// candidate data.
type Codec struct {
	signingKey []byte
	encrypter  jose.Encrypter
	encKey     []byte
}

func NewCodec(signingKey, encryptionKey []byte) (*Codec, error) {
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("invite encryption key must be 32 bytes, got %d", len(encryptionKey))
	}
	enc, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: encryptionKey},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build invite encrypter: %w", err)
	}
	return &Codec{signingKey: signingKey, encrypter: enc, encKey: encryptionKey}, nil
}

// Issue signs a fresh invite claim for one candidate on one test and
// returns the encrypted compact token plus the jti it carries.
func (c *Codec) Issue(email string, testID, candidateID uint, now time.Time) (string, string, error) {
	jti := uuid.NewString()
	claims := InviteClaims{
		TestID:      testID,
		CandidateID: candidateID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(InviteTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign invite claims: %w", err)
	}

	obj, err := c.encrypter.Encrypt([]byte(signed))
	if err != nil {
		return "", "", fmt.Errorf("failed to encrypt invite token: %w", err)
	}
	compact, err := obj.CompactSerialize()
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize invite token: %w", err)
	}
	return compact, jti, nil
}

// Decode decrypts and verifies an invite token. Input that is not a
// JWE at all, or whose signature does not verify, is ErrInvalidToken;
// a well-formed JWE the key cannot open is ErrDecryptionFailed; a
// token past its signed expiry is ErrExpiredToken.
func (c *Codec) Decode(compact string) (*InviteClaims, error) {
	obj, err := jose.ParseEncrypted(compact, []jose.KeyAlgorithm{jose.DIRECT}, []jose.ContentEncryption{jose.A256GCM})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	signed, err := obj.Decrypt(c.encKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	var claims InviteClaims
	_, err = jwt.ParseWithClaims(string(signed), &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &claims, nil
}

// HashJTI returns the hex SHA-256 of a jti, the only form in which the
// service persists it.
func HashJTI(jti string) string {
	sum := sha256.Sum256([]byte(jti))
	return hex.EncodeToString(sum[:])
}

// JTIMatches compares a presented jti against a stored hash in
// constant time.
func JTIMatches(jti, storedHash string) bool {
	computed := HashJTI(jti)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptionFailed)
}
