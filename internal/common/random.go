package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// accessCodeAlphabet deliberately omits 0/O and 1/I, which are easy to
// confuse when a code is shared over chat or read out loud.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// AccessCodeLength is the length of community access codes.
const AccessCodeLength = 8

// MakeRandHexString generates a random hexadecimal string. The size
// parameter is the number of random bytes, so the resulting string is
// twice as long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeAccessCode generates a community access code: AccessCodeLength
// characters drawn from a confusion-resistant alphabet.
func MakeAccessCode() (string, error) {
	out := make([]byte, AccessCodeLength)
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
