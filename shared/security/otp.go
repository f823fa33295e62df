package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"strings"
)

// OTPLength is the number of digits in a generated one-time code.
const OTPLength = 6

const sessionIDBytes = 32

// GenerateOTP returns a random numeric code of OTPLength digits.
func GenerateOTP() (string, error) {
	var b strings.Builder
	b.Grow(OTPLength)

	ten := big.NewInt(10)
	for i := 0; i < OTPLength; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// GenerateSessionID returns a random hex string. It is only ever compared for
// equality.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// DigestOTP returns the hex SHA-256 digest of code.
func DigestOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// MatchOTP reports whether code digests to digest, in constant time.
func MatchOTP(code, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(DigestOTP(code)), []byte(digest)) == 1
}
