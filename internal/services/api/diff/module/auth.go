package module

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"wta/internal/modkit/httpkit"
	"wta/internal/platform/logger"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// ErrNoAuth is returned when neither a verification key nor insecure mode is configured
var ErrNoAuth = errors.New("diff: CORE_API_AUTH_PUBKEY is required unless CORE_API_AUTH_INSECURE=true")

// NewAuth builds the bearer port, the owner id is the token subject
func NewAuth(opt AuthOptions) (*httpkit.Port, error) {
	if strings.TrimSpace(opt.PublicKeyPEM) != "" {
		key, err := ParseRSAPublicKey(opt.PublicKeyPEM)
		if err != nil {
			return nil, err
		}
		return httpkit.NewPortFunc(RS256Verifier(key, opt.Leeway, time.Now)), nil
	}
	if !opt.Insecure {
		return nil, ErrNoAuth
	}
	logger.Named("diff-auth").Warn().Msg("insecure bearer mode, tokens are trusted as owner ids")
	return httpkit.NewPortFunc(insecureToken), nil
}

func insecureToken(tok string) (string, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", errors.New("empty token")
	}
	return tok, nil
}

// RS256Verifier returns a TokenFunc that verifies compact RS256 JWTs against key
func RS256Verifier(key *rsa.PublicKey, leeway time.Duration, now func() time.Time) httpkit.TokenFunc {
	return func(raw string) (string, error) {
		tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.RS256})
		if err != nil {
			return "", err
		}
		var claims jwt.Claims
		if err := tok.Claims(key, &claims); err != nil {
			return "", err
		}
		if err := claims.ValidateWithLeeway(jwt.Expected{Time: now()}, leeway); err != nil {
			return "", err
		}
		sub := strings.TrimSpace(claims.Subject)
		if sub == "" {
			return "", errors.New("token has no subject")
		}
		return sub, nil
	}
}

// ParseRSAPublicKey reads a PEM encoded PKIX or PKCS1 RSA public key
func ParseRSAPublicKey(s string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, errors.New("diff: auth public key is not PEM")
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("diff: parse auth public key: %w", err)
		}
		rk, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("diff: auth public key is %T, want RSA", pub)
		}
		return rk, nil
	}
}
