package promocodes

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet excludes nothing: partner services accept the full uppercase
// alphanumeric set.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeLength is the fixed promo code length.
const codeLength = 12

// byteLimit is the largest multiple of the alphabet size below 256; bytes at
// or above it are rejected so each character stays uniformly distributed.
const byteLimit = 256 - 256%len(codeAlphabet)

// generateCode returns a random promo code from the alphabet.
func generateCode() (string, error) {
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= byteLimit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return string(out), nil
}
