package ids

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync/atomic"
)

const defaultSuffixLen = 8

var fallbackSeq atomic.Uint64

// New returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits of space; callers that keep a map still check for collisions.
func New(prefix string) string {
	return NewWithLen(prefix, defaultSuffixLen)
}

// NewWithLen is New with a custom suffix length (1..32).
func NewWithLen(prefix string, n int) string {
	if n <= 0 {
		n = defaultSuffixLen
	}
	if n > 32 {
		n = 32
	}
	b := make([]byte, (n*5+7)/8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is extraordinary; keep ids unique within the process anyway.
		return fmt.Sprintf("%s-%d", prefix, fallbackSeq.Add(1))
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b))
	if len(suffix) > n {
		suffix = suffix[:n]
	}
	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}
