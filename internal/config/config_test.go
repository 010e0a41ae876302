package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInviteKey(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)

	key, err := decodeInviteKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, key)

	// Padded form is accepted too.
	key, err = decodeInviteKey(base64.URLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, key)
}

func TestDecodeInviteKey_Missing(t *testing.T) {
	_, err := decodeInviteKey("")
	assert.ErrorContains(t, err, "required")
}

func TestDecodeInviteKey_WrongLength(t *testing.T) {
	short := base64.RawURLEncoding.EncodeToString([]byte("short"))
	_, err := decodeInviteKey(short)
	assert.ErrorContains(t, err, "32 bytes")
}

func TestDecodeInviteKey_NotBase64(t *testing.T) {
	_, err := decodeInviteKey("!!!not-base64!!!")
	assert.ErrorContains(t, err, "base64url")
}
