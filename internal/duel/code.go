package duel

import (
	"crypto/rand"
	"math/big"
)

// codeAlphabet omits 0/O and 1/I so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// generateCode returns a random human-shareable room code. Uniqueness among
// active rooms is the registry's job; the caller retries on collision up to
// its configured cap.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	size := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
