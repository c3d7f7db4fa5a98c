// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs and verifies session tokens. A token carries the display name a
// client registered with, so a reconnecting socket can skip the register step.
type Issuer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// expiry of 0 means tokens never expire.
	expiry time.Duration
}

// NewIssuer generates a fresh ed25519 key pair at runtime.
func NewIssuer(expiry time.Duration) (*Issuer, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Issuer{privateKey: privateKey, publicKey: publicKey, expiry: expiry}, nil
}

// NewIssuerFromPath reads ed25519 private/public keys from file.
func NewIssuerFromPath(privatePath, publicPath string, expiry time.Duration) (*Issuer, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 key size")
	}
	return &Issuer{
		privateKey: ed25519.PrivateKey(privateKeyData),
		publicKey:  ed25519.PublicKey(publicKeyData),
		expiry:     expiry,
	}, nil
}

// Expiry is the token lifetime; 0 means never.
func (i *Issuer) Expiry() time.Duration { return i.expiry }

// CreateToken returns a signed JWT with "sub" = displayName and, unless the
// issuer never expires tokens, an "exp" claim.
func (i *Issuer) CreateToken(displayName string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": displayName,
		"iat": now.Unix(),
	}
	if i.expiry > 0 {
		claims["exp"] = now.Add(i.expiry).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(i.privateKey)
}

// Authenticate verifies a token and returns its display name.
func (i *Issuer) Authenticate(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.publicKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	name, ok := claims["sub"].(string)
	if !ok || name == "" {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return name, nil
}
