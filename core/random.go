package core

import (
	"crypto/rand"
	"math/big"
)

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// RandomPassword generates a random password of the given length.
func RandomPassword(length int) string {
	max := big.NewInt(int64(len(passwordCharset)))
	pwd := make([]byte, length)
	for i := range pwd {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // crypto/rand is broken; nothing sane to do
		}
		pwd[i] = passwordCharset[n.Int64()]
	}
	return string(pwd)
}
