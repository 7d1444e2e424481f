package kg

import (
	"encoding/base64"
	"strings"
)

// StableID derives a deterministic, Firestore/URL-safe document id from a
// logical key. The key is trimmed and lowercased first, so re-deriving the id
// for the same logical entity always converges on the same document.
func StableID(key string) string {
	normalized := strings.ToLower(strings.TrimSpace(key))
	return base64.RawURLEncoding.EncodeToString([]byte(normalized))
}

// NodeID is the identity of a node: owner, type and normalized name
func NodeID(owner string, t NodeType, name string) string {
	return StableID(owner + "|" + string(t) + "|" + CleanName(name))
}

// EdgeID is the identity of an edge: owner, relation type and endpoint names
func EdgeID(owner string, t EdgeType, fromName, toName string) string {
	return StableID(owner + "|" + string(t) + "|" + CleanName(fromName) + "|" + CleanName(toName))
}
