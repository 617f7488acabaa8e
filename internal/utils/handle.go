package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const handleAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomHandle generates a random alphanumeric handle candidate of the given
// length using crypto/rand.
func RandomHandle(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(handleAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random handle: %w", err)
		}
		buf[i] = handleAlphabet[n.Int64()]
	}

	return string(buf), nil
}
