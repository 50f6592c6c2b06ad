package utils

import (
	"time"

	"golang.org/x/exp/rand"
)

const passwordCharset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789#%+"

var pwRand = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))

// GeneratePassword builds a random credential for newly created portal users.
// Ambiguous characters (0/O, 1/l) are left out of the charset.
func GeneratePassword(length int) string {
	if length < 8 {
		length = 8
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = passwordCharset[pwRand.Intn(len(passwordCharset))]
	}
	return string(buf)
}
