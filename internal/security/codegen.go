package security

import (
	"crypto/rand"
	"fmt"
)

// CodeAlphabet is the character set of invite codes.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Bytes at or above this bound are rejected so every symbol is equally likely.
const unbiasedBound = 256 - 256%len(CodeAlphabet)

// GenerateCode returns a uniformly random code of the given length drawn from
// CodeAlphabet.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive: %d", length)
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= unbiasedBound {
				continue
			}
			out = append(out, CodeAlphabet[int(b)%len(CodeAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
