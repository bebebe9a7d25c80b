// Copyright (c) 2026 Handraise. All rights reserved.

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// OtpCodeLength is the fixed number of digits in a one-time passcode.
const OtpCodeLength = 6

// GenerateOtpCode produces a fixed-length numeric one-time passcode.
//
// The code is drawn from crypto/rand and zero-padded to [OtpCodeLength]
// digits, so "007312" is a valid code.
func GenerateOtpCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OtpCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate otp code: %w", err)
	}

	return fmt.Sprintf("%0*d", OtpCodeLength, n), nil
}

// HashOtpCode hashes a one-time passcode for at-rest storage.
//
// # Why bcrypt for a 6-digit code?
//
// A numeric code has only a million possibilities, so a leaked table of fast
// hashes is trivially reversible. bcrypt's work factor makes offline guessing
// of a dumped otp_code table expensive during the short expiry window.
func HashOtpCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash otp code: %w", err)
	}
	return string(hashed), nil
}

// CheckOtpCode compares a submitted code against its stored hash.
func CheckOtpCode(code, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(code))
	return err == nil
}
