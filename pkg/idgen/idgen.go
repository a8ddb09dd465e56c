// Package idgen produces short random alphanumeric identifiers.
package idgen

import "math/rand/v2"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns length characters drawn uniformly, with replacement,
// from [A-Za-z0-9]. Not suitable for secrets.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}
