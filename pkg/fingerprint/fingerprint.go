// Package fingerprint creates deterministic content hashes used as cache
// keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Row creates a fingerprint for a row of cells. Cells are trimmed and
// lowercased first, so cosmetic differences between uploads of the same
// template hash identically.
func Row(cells []string) string {
	normalized := make([]string, len(cells))
	for i, c := range cells {
		normalized[i] = strings.ToLower(strings.TrimSpace(c))
	}

	b, _ := json.Marshal(normalized)
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:])
}

// Generate creates a deterministic fingerprint for a string map by hashing
// its canonical (key-sorted) JSON representation.
func Generate(data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(data[k])
		sb.Write(kb)
		sb.WriteString(":")
		sb.Write(vb)
	}
	sb.WriteString("}")

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}

// HasChanged compares two fingerprints to detect changes
func HasChanged(oldFingerprint, newFingerprint string) bool {
	return oldFingerprint != newFingerprint
}
