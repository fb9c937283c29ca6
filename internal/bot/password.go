// ABOUTME: Random credential generation for account provisioning
// ABOUTME: Passwords cross the boundary once and are never stored

package bot

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passwordCharset excludes characters that are easy to misread when a
// user retypes the credential from a chat message.
const passwordCharset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword returns a random password of the given length drawn
// from passwordCharset using crypto/rand.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}

	max := big.NewInt(int64(len(passwordCharset)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		buf[i] = passwordCharset[n.Int64()]
	}

	return string(buf), nil
}
