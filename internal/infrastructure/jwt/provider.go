package jwtinfra

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/go-carservice-api/internal/config"
	"github.com/go-carservice-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the whole credential payload: subject, role and the registered times.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Provider issues and validates session credentials. It signs with RS256 when
// key files are configured and with HS256 when JWT_SECRET is set instead.
type Provider struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
	expiry    time.Duration
	now       func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	p := &Provider{expiry: cfg.JWTExpiry, now: time.Now}
	if p.expiry <= 0 {
		p.expiry = 7 * 24 * time.Hour
	}

	if cfg.JWTSecret != "" {
		p.method = jwt.SigningMethodHS256
		p.signKey = []byte(cfg.JWTSecret)
		p.verifyKey = []byte(cfg.JWTSecret)
		return p, nil
	}

	privKey, pubKey, err := loadRSA(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, err
	}
	p.method = jwt.SigningMethodRS256
	p.signKey = privKey
	p.verifyKey = pubKey
	return p, nil
}

func loadRSA(privPath, pubPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privBytes, err := os.ReadFile(privPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse public key: %w", err)
	}
	return privKey, pubKey, nil
}

// Issue mints a credential for subjectID with the given role.
func (p *Provider) Issue(subjectID, role string) (string, time.Time, error) {
	now := p.now()
	exp := now.Add(p.expiry)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(p.method, claims).SignedString(p.signKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate checks signature and expiry. Every failure is reported as
// domain.ErrInvalidToken without saying which check failed.
func (p *Provider) Validate(tokenStr string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return p.verifyKey, nil
	},
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || !validRole(claims.Role) {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return domain.Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}

func validRole(role string) bool {
	return role == domain.RoleAdmin || role == domain.RoleCustomer
}
