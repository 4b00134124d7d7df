// Package otp generates the short numeric passcodes mailed to users
// during registration.
package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Source produces one passcode per call. It is an interface so tests
// can substitute a deterministic implementation.
type Source interface {
	Code() (string, error)
}

// Generator draws uniform 4-digit codes (1000-9999) from a random
// stream, crypto/rand by default.
type Generator struct {
	rand io.Reader
}

func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

func (g *Generator) Code() (string, error) {
	n, err := rand.Int(g.rand, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}
