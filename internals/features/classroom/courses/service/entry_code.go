package service

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// EntryCodeAlphabet leaves out visually confusable characters (0,1,I,O).
const (
	EntryCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	EntryCodeLength   = 6
)

// GenerateEntryCode returns a fresh 6-character enrollment code. Uniqueness is
// enforced by the DB index; callers retry on a duplicate-key error.
func GenerateEntryCode() string {
	var sb strings.Builder
	sb.Grow(EntryCodeLength)
	max := big.NewInt(int64(len(EntryCodeAlphabet)))
	for i := 0; i < EntryCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// non-cryptographic uniqueness is enough here
			sb.WriteByte(EntryCodeAlphabet[i%len(EntryCodeAlphabet)])
			continue
		}
		sb.WriteByte(EntryCodeAlphabet[n.Int64()])
	}
	return sb.String()
}

// NormalizeEntryCode makes code matching case-insensitive (codes are
// generated uppercase-only).
func NormalizeEntryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
