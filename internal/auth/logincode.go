// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// LoginCodeLength is the number of digits in a portal login code.
const LoginCodeLength = 8

var loginCodeRe = regexp.MustCompile(`^[0-9]{8}$`)

// GenerateLoginCode produces a random numeric portal login code.
// Codes are stored hashed; the plaintext is shown to the admin once.
func GenerateLoginCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < LoginCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating login code: %w", err)
	}
	return fmt.Sprintf("%0*d", LoginCodeLength, n), nil
}

// IsValidLoginCode reports whether code has the expected shape.
func IsValidLoginCode(code string) bool {
	return loginCodeRe.MatchString(code)
}

// HashLoginCode hashes a login code for storage.
func HashLoginCode(code string) (string, error) {
	return HashArgon2(code)
}

// CheckLoginCode verifies a login code against its stored hash.
func CheckLoginCode(code, encodedHash string) (bool, error) {
	return VerifyArgon2(code, encodedHash)
}

// accessCodeAlphabet omits ambiguous characters (0/O, 1/I/l).
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// AccessCodeLength is the number of characters in a project access code.
const AccessCodeLength = 10

// GenerateAccessCode produces a random project access code. Unlike login
// codes these are stored plaintext: the portal looks projects up by them.
func GenerateAccessCode() (string, error) {
	code := make([]byte, AccessCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(accessCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generating access code: %w", err)
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
