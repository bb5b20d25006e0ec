package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-carservice-api/internal/config"
	"github.com/go-carservice-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRSAProvider writes a fresh RSA key pair into t.TempDir() and loads it.
func newRSAProvider(t *testing.T) *Provider {
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
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

func newHMACProvider(t *testing.T, secret string) *Provider {
	t.Helper()
	p, err := NewProvider(&config.Config{JWTSecret: secret, JWTExpiry: 7 * 24 * time.Hour})
	require.NoError(t, err)
	return p
}

func TestIssueValidate_RS256(t *testing.T) {
	p := newRSAProvider(t)
	token, exp, err := p.Issue("c1", domain.RoleCustomer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, 5*time.Second)

	id, err := p.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{SubjectID: "c1", Role: domain.RoleCustomer}, id)
}

func TestIssueValidate_HS256(t *testing.T) {
	p := newHMACProvider(t, "s3cret")
	token, _, err := p.Issue("a1", domain.RoleAdmin)
	require.NoError(t, err)

	id, err := p.Validate(token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
}

func TestIssue_ClaimsAreSubjectRoleAndTimesOnly(t *testing.T) {
	p := newHMACProvider(t, "s3cret")
	token, _, err := p.Issue("c1", domain.RoleCustomer)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"sub", "role", "iat", "exp"}, keys)
}

func TestValidate_Expired(t *testing.T) {
	p := newHMACProvider(t, "s3cret")
	token, _, err := p.Issue("c1", domain.RoleCustomer)
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(7*24*time.Hour + time.Minute) }
	_, err = p.Validate(token)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestValidate_FailuresAreIndistinguishable(t *testing.T) {
	p := newRSAProvider(t)
	other := newRSAProvider(t)
	foreign, _, err := other.Issue("c1", domain.RoleCustomer)
	require.NoError(t, err)

	good, _, err := p.Issue("c1", domain.RoleCustomer)
	require.NoError(t, err)
	tampered := good[:len(good)-4] + "AAAA"

	// HS256 token signed with a guessable key must not pass an RS256 provider.
	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("guess"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"malformed": "not-a-token",
		"wrong key": foreign,
		"tampered":  tampered,
		"wrong alg": hs,
		"empty":     "",
	} {
		_, err := p.Validate(tok)
		assert.Equal(t, domain.ErrInvalidToken, err, name)
	}
}

func TestValidate_RejectsUnknownRoleAndMissingSubject(t *testing.T) {
	p := newHMACProvider(t, "s3cret")

	noSubject, _, err := p.Issue("", domain.RoleCustomer)
	require.NoError(t, err)
	_, err = p.Validate(noSubject)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))

	badRole, _, err := p.Issue("c1", "superuser")
	require.NoError(t, err)
	_, err = p.Validate(badRole)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestNewProvider_MissingKeyFiles(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTPrivateKeyPath: "/nope/private.pem", JWTPublicKeyPath: "/nope/public.pem"})
	assert.ErrorContains(t, err, "read private key")
}
