package jwt

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrNoPublicKey      = errors.New("no public key configured")
)

// Claims carries the subset of token claims the API reads. Tokens are
// issued by the identity provider; this package only verifies them.
type Claims struct {
	Issuer    string `json:"iss,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Audience  string `json:"aud,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	JWTID     string `json:"jti,omitempty"`

	Email    string `json:"email,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Valid checks the time-based claims against the current clock
func (c *Claims) Valid() error {
	now := time.Now().Unix()

	if c.ExpiresAt != 0 && now > c.ExpiresAt {
		return ErrTokenExpired
	}

	if c.NotBefore != 0 && now < c.NotBefore {
		return ErrTokenNotYetValid
	}

	return nil
}

// Service verifies RS256 access tokens against a single public key
type Service struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// Config holds token verification settings
type Config struct {
	PublicKeyPath string
	Issuer        string
}

// NewService loads the verification key from disk
func NewService(cfg Config) (*Service, error) {
	if cfg.PublicKeyPath == "" {
		return nil, errors.New("public key path is required")
	}

	publicKey, err := loadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	return &Service{publicKey: publicKey, issuer: cfg.Issuer}, nil
}

// NewVerifier wraps an already-loaded key, for callers that do not read
// the key from a file
func NewVerifier(publicKey *rsa.PublicKey, issuer string) *Service {
	return &Service{publicKey: publicKey, issuer: issuer}
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Validate checks the token's signature, algorithm, time window, and
// issuer, and returns the decoded claims
func (s *Service) Validate(tokenString string) (*Claims, error) {
	if s.publicKey == nil {
		return nil, ErrNoPublicKey
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	headerJSON, err := decodeSegment(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Only RS256 is accepted; the algorithm is pinned, never read from
	// the token to pick a verification scheme
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return nil, ErrInvalidToken
	}
	if hdr.Alg != "RS256" {
		return nil, ErrInvalidToken
	}

	signature, err := decodeSegment(parts[2])
	if err != nil {
		return nil, ErrInvalidToken
	}

	signed := sha256.Sum256([]byte(parts[0] + "." + parts[1]))
	if err := rsa.VerifyPKCS1v15(s.publicKey, crypto.SHA256, signed[:], signature); err != nil {
		return nil, ErrInvalidSignature
	}

	claimsJSON, err := decodeSegment(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if err := claims.Valid(); err != nil {
		return nil, err
	}

	if claims.Issuer != s.issuer {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}

	return rsaPub, nil
}

// decodeSegment accepts both padded and unpadded base64url segments
func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
