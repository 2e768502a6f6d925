package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-notification-hub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeys(t *testing.T) *config.Config {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))
	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}), 0600))

	return &config.Config{JWTPrivateKeyPath: privPath, JWTPublicKeyPath: pubPath, JWTExpiry: time.Hour}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p, err := NewProvider(writeKeys(t))
	require.NoError(t, err)

	token, err := p.Sign("billing-service", "admin")
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "billing-service", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_ForeignKey(t *testing.T) {
	a, err := NewProvider(writeKeys(t))
	require.NoError(t, err)
	b, err := NewProvider(writeKeys(t))
	require.NoError(t, err)

	token, err := a.Sign("x", "admin")
	require.NoError(t, err)
	_, err = b.Verify(token)
	assert.Error(t, err)
}

func TestNewProvider_MissingKeys(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTPrivateKeyPath: "/nonexistent/key.pem"})
	assert.Error(t, err)
}
