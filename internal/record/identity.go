package record

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NamespaceRecordIdentity is the fixed UUID namespace for generating
// deterministic identities for records that carry no identifying key.
// Derived from the string "metapush/record-identity/v1" using UUID v5
// with the URL namespace, so the same source always yields the same IDs
// across runs.
var NamespaceRecordIdentity uuid.UUID

func init() {
	NamespaceRecordIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("metapush/record-identity/v1"))
}

// FallbackID creates a deterministic UUID v5 for an unnamed record, keyed
// by its normalized source path and ordinal position within that source.
//
// Used by the never-merge absent-identity policy: instead of treating two
// unnamed entities as the same record, each gets a stable synthetic
// identity so re-processing the same source remains idempotent while
// distinct unnamed entities stay distinct.
func FallbackID(sourcePath string, ordinal int) uuid.UUID {
	normalized := normalizeSource(sourcePath)
	return uuid.NewSHA1(NamespaceRecordIdentity, []byte(fmt.Sprintf("%s#%d", normalized, ordinal)))
}

// normalizeSource converts a source path to canonical form so the same
// file referenced with different casing or a leading "./" produces the
// same identity.
func normalizeSource(path string) string {
	normalized := strings.ToLower(path)
	normalized = strings.ReplaceAll(normalized, "\\", "/")
	normalized = strings.TrimPrefix(normalized, "./")
	return normalized
}
