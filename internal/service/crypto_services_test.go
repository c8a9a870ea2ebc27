package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSignatureService(t *testing.T) {
	svc := NewHMACSignatureService()

	payload := `{"transaction_id":"TXN1","status":"SUCCESS"}`
	sig := svc.Sign("secret", payload)

	assert.Len(t, sig, 64) // hex-encoded SHA-256
	assert.True(t, svc.Verify("secret", payload, sig))
	assert.False(t, svc.Verify("secret", payload, "deadbeef"))
	assert.False(t, svc.Verify("other-secret", payload, sig))
	assert.False(t, svc.Verify("secret", payload+" ", sig))
}

func TestAESEncryptionService_RoundTrip(t *testing.T) {
	key := strings.Repeat("ab", 32) // 64 hex chars
	svc, err := NewAESEncryptionService(key)
	require.NoError(t, err)

	plaintext := `{"utr":"UTR123","payer_vpa":"customer@okhdfcbank"}`
	enc, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, enc)

	dec, err := svc.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, plaintext, dec)

	// Same plaintext encrypts differently each time (random nonce).
	enc2, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, enc, enc2)
}

func TestAESEncryptionService_BadKey(t *testing.T) {
	_, err := NewAESEncryptionService("not-hex")
	assert.Error(t, err)

	_, err = NewAESEncryptionService("abcd") // too short
	assert.Error(t, err)
}

func TestAESEncryptionService_TamperedCiphertext(t *testing.T) {
	svc, err := NewAESEncryptionService(strings.Repeat("cd", 32))
	require.NoError(t, err)

	enc, err := svc.Encrypt("hello")
	require.NoError(t, err)

	tampered := enc[:len(enc)-2] + "00"
	_, err = svc.Decrypt(tampered)
	assert.Error(t, err)
}

func TestArgon2HashService(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := svc.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Verify("x", "not-a-hash")
	assert.Error(t, err)
}

func TestJWTTokenService_RoundTrip(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "rizzpay-gateway")

	merchantID := uuid.New()
	token, expiresAt, err := svc.Generate(merchantID, "acme")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, merchantID, claims.MerchantID)
	assert.Equal(t, "acme", claims.Username)
}

func TestJWTTokenService_RejectsBadTokens(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "rizzpay-gateway")

	_, err := svc.Validate("garbage.token.here")
	assert.Error(t, err)

	// Token signed with a different secret.
	other := NewJWTTokenService("other-secret", time.Hour, "rizzpay-gateway")
	token, _, err := other.Generate(uuid.New(), "acme")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Expired(t *testing.T) {
	svc := NewJWTTokenService("test-secret", -time.Minute, "rizzpay-gateway")

	token, _, err := svc.Generate(uuid.New(), "acme")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}
