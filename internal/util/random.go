// Package util provides utility functions for the valuation engine.
package util

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2; identifiers here are not security sensitive.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GenerateValuationID generates a time-derived valuation identifier with a
// random suffix so two computations in the same second stay distinct.
func GenerateValuationID() string {
	return GenerateRandomID(fmt.Sprintf("val_%d_", time.Now().Unix()), 6)
}
