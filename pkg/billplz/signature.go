// Package billplz verifies Billplz X-Signature callbacks.
package billplz

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
)

const SignatureField = "x_signature"

var (
	ErrMissingSignature = errors.New("x_signature missing")
	ErrInvalidSignature = errors.New("x_signature mismatch")
)

// SourceString renders every field except x_signature as key+value, sorts the parts in
// ascending case-insensitive order and joins them with "|".
func SourceString(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == SignatureField {
			continue
		}
		parts = append(parts, k+v)
	}
	sort.Slice(parts, func(i, j int) bool {
		li, lj := strings.ToLower(parts[i]), strings.ToLower(parts[j])
		if li == lj {
			return parts[i] < parts[j]
		}
		return li < lj
	})
	return strings.Join(parts, "|")
}

// Sign returns the lowercase hex HMAC-SHA256 of the source string.
func Sign(key string, fields map[string]string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(SourceString(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks fields[x_signature] against the expected signature in constant time.
func Verify(key string, fields map[string]string) error {
	got := fields[SignatureField]
	if got == "" {
		return ErrMissingSignature
	}
	want := Sign(key, fields)
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return ErrInvalidSignature
	}
	return nil
}
