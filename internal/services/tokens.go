package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const shareCodeDigits = 8

var shareCodeSpace = big.NewInt(100_000_000)

// NewSessionToken returns a long-lived bearer token: three random v4 UUIDs
// without separators, 96 hex characters and 366 random bits.
func NewSessionToken() string {
	var b strings.Builder
	b.Grow(96)
	for i := 0; i < 3; i++ {
		b.WriteString(strings.ReplaceAll(uuid.New().String(), "-", ""))
	}
	return b.String()
}

// NewShareCode returns a zero-padded 8 digit decimal code.
func NewShareCode() (string, error) {
	n, err := rand.Int(rand.Reader, shareCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", shareCodeDigits, n.Int64()), nil
}
