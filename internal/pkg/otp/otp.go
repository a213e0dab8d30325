package otp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Generator issues and checks the 6-digit codes emailed during registration.
type Generator struct {
	issuer string
	ttl    time.Duration
}

func NewGenerator(issuer string, ttl time.Duration) *Generator {
	return &Generator{issuer: issuer, ttl: ttl}
}

func (g *Generator) TTL() time.Duration {
	return g.ttl
}

func (g *Generator) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(g.ttl.Seconds()),
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// NewSecret returns a fresh per-account secret.
func (g *Generator) NewSecret(accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.issuer,
		AccountName: accountName,
		Period:      uint(g.ttl.Seconds()),
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func (g *Generator) Code(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, g.opts())
}

// Validate checks code against secret at the given moment. Codes from the
// previous period are accepted; callers bound the real lifetime with the
// time the code was sent.
func (g *Generator) Validate(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, g.opts())
	if err != nil {
		return false
	}
	return ok
}
