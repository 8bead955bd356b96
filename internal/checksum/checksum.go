// Package checksum computes the content fingerprints used for change
// detection in the index and as ETags for optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const prefix = "sha256:"

// Sum returns "sha256:<hex digest>" of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return prefix + hex.EncodeToString(h[:])
}

// Matches reports whether tag identifies data. It accepts the bare hex
// digest as well as quoted ETag forms ("…", W/"…").
func Matches(tag string, data []byte) bool {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
	tag = strings.Trim(tag, `"`)
	if !strings.HasPrefix(tag, prefix) {
		tag = prefix + tag
	}
	return tag == Sum(data)
}
