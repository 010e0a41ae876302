package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("test-signing-key"), []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return c
}

func TestNewCodec_RejectsShortEncryptionKey(t *testing.T) {
	_, err := NewCodec([]byte("sign"), []byte("too-short"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestCodec_IssueAndDecode(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	compact, jti, err := c.Issue("Candidate@Example.com", 42, 7, now)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	// The compact JWE must not leak the signed JWT in the clear.
	assert.NotContains(t, compact, "eyJhbGciOiJIUzI1NiI")

	claims, err := c.Decode(compact)
	require.NoError(t, err)
	assert.Equal(t, "Candidate@Example.com", claims.Subject)
	assert.Equal(t, uint(42), claims.TestID)
	assert.Equal(t, uint(7), claims.CandidateID)
	assert.Equal(t, jti, claims.ID)
	assert.WithinDuration(t, now.Add(InviteTTL), claims.ExpiresAt.Time, 2*time.Second)
}

func TestCodec_UniqueJTIPerIssue(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	_, jti1, err := c.Issue("a@example.com", 1, 1, now)
	require.NoError(t, err)
	_, jti2, err := c.Issue("a@example.com", 1, 1, now)
	require.NoError(t, err)
	assert.NotEqual(t, jti1, jti2)
}

func TestCodec_DecodeTamperedToken(t *testing.T) {
	c := testCodec(t)
	compact, _, err := c.Issue("a@example.com", 1, 1, time.Now())
	require.NoError(t, err)

	// Flip ciphertext bytes; AEAD must reject.
	parts := strings.Split(compact, ".")
	require.Len(t, parts, 5)
	mangled := []byte(parts[3])
	mangled[0] ^= 'x'
	parts[3] = string(mangled)

	_, err = c.Decode(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
	assert.True(t, IsDecryptionError(err))
}

func TestCodec_DecodeWithWrongEncryptionKey(t *testing.T) {
	c := testCodec(t)
	other, err := NewCodec([]byte("test-signing-key"), []byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	compact, _, err := c.Issue("a@example.com", 1, 1, time.Now())
	require.NoError(t, err)

	_, err = other.Decode(compact)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestCodec_DecodeWithWrongSigningKey(t *testing.T) {
	enc := []byte("0123456789abcdef0123456789abcdef")
	issuer, err := NewCodec([]byte("key-one"), enc)
	require.NoError(t, err)
	verifier, err := NewCodec([]byte("key-two"), enc)
	require.NoError(t, err)

	compact, _, err := issuer.Issue("a@example.com", 1, 1, time.Now())
	require.NoError(t, err)

	_, err = verifier.Decode(compact)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_DecodeExpiredToken(t *testing.T) {
	c := testCodec(t)
	compact, _, err := c.Issue("a@example.com", 1, 1, time.Now().Add(-2*InviteTTL))
	require.NoError(t, err)

	_, err = c.Decode(compact)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestCodec_DecodeGarbage(t *testing.T) {
	c := testCodec(t)
	_, err := c.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, IsDecryptionError(err))
}

func TestHashJTI(t *testing.T) {
	h := HashJTI("some-jti")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashJTI("some-jti"))
	assert.NotEqual(t, h, HashJTI("other-jti"))
}

func TestJTIMatches(t *testing.T) {
	stored := HashJTI("the-jti")
	assert.True(t, JTIMatches("the-jti", stored))
	assert.False(t, JTIMatches("another-jti", stored))
	assert.False(t, JTIMatches("the-jti", ""))
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	s := NewSessionCodec([]byte("session-key"))
	now := time.Now()

	raw, err := s.Issue(9, "hr@example.com", "HR", CandidateSessionTTL, now)
	require.NoError(t, err)

	claims, err := s.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "hr@example.com", claims.Email)
	assert.Equal(t, "HR", claims.Role)
	assert.WithinDuration(t, now.Add(CandidateSessionTTL), claims.ExpiresAt.Time, 2*time.Second)
}

func TestSessionCodec_RejectsExpired(t *testing.T) {
	s := NewSessionCodec([]byte("session-key"))
	raw, err := s.Issue(9, "hr@example.com", "HR", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = s.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionCodec_RejectsForeignSignature(t *testing.T) {
	a := NewSessionCodec([]byte("key-a"))
	b := NewSessionCodec([]byte("key-b"))

	raw, err := a.Issue(1, "x@example.com", "CANDIDATE", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = b.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
