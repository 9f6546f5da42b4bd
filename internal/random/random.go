// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package random generates unguessable codes and file name suffixes.
package random

import (
	"crypto/rand"
	"math/big"
)

const (
	// Digits is the alphabet for one-time codes.
	Digits = "0123456789"
	// Alphanumeric is the alphabet for file name suffixes.
	Alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// String returns a random string of length characters drawn from alphabet.
func String(length int, alphabet string) (string, error) {
	out := make([]byte, length)
	limit := big.NewInt(int64(len(alphabet)))

	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}

	return string(out), nil
}

// Code returns a numeric one-time code with the given number of digits.
func Code(length int) (string, error) {
	return String(length, Digits)
}
