package crypto

import (
	"crypto/rand"
	"math/big"
)

// OTPLength is the number of digits in a login code.
const OTPLength = 6

// GenerateOTP creates a uniformly random numeric login code.
// Leading zeros are preserved, so the result is always OTPLength characters.
func GenerateOTP() (string, error) {
	code := make([]byte, OTPLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
