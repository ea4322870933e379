package room

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	CodeLength = 4
	// no I, O, 0 or 1: they are easily misread on a phone screen
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// CodeGenerator produces candidate room codes. The registry retries on collision.
type CodeGenerator func() (string, error)

// RandomCode draws CodeLength symbols from CodeAlphabet with crypto/rand.
func RandomCode() (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = CodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// ValidCode reports whether s has the shape of a room code.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(CodeAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
