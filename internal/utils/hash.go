package utils

import "golang.org/x/crypto/bcrypt"

// HashOTP returns a bcrypt hash of a one-time code.
func HashOTP(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckOTP compares a bcrypt hashed code with its possible plaintext equivalent.
func CheckOTP(hashedCode, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(code)) == nil
}
