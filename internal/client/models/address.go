package models

import (
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid address")

const addressHexLen = 64

// NormalizeAddress returns the canonical 0x-prefixed, lower-case, 32-byte
// form of a Sui address or object id ("0x2" -> "0x000…02").
func NormalizeAddress(s string) (string, error) {
	h := strings.ToLower(strings.TrimSpace(s))
	h = strings.TrimPrefix(h, "0x")
	if h == "" || len(h) > addressHexLen {
		return "", ErrInvalidAddress
	}
	h = strings.Repeat("0", addressHexLen-len(h)) + h
	if _, err := hex.DecodeString(h); err != nil {
		return "", ErrInvalidAddress
	}
	return "0x" + h, nil
}

// SameAddress compares two addresses after normalization. Invalid input
// never matches.
func SameAddress(a, b string) bool {
	na, err := NormalizeAddress(a)
	if err != nil {
		return false
	}
	nb, err := NormalizeAddress(b)
	if err != nil {
		return false
	}
	return na == nb
}

// ShortAddress renders 0x1234…abcd for display.
func ShortAddress(s string) string {
	n, err := NormalizeAddress(s)
	if err != nil {
		return s
	}
	trimmed := strings.TrimLeft(n[2:], "0")
	if len(trimmed) <= 8 {
		if trimmed == "" {
			trimmed = "0"
		}
		return "0x" + trimmed
	}
	return "0x" + n[2:6] + "…" + n[len(n)-4:]
}
