package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Fingerprint hashes the RFC 8785 canonical form of the document's layout and
// component tree. Identity, version and metadata are excluded, so two
// documents describing the same interface share a fingerprint.
func Fingerprint(doc Document) (string, error) {
	payload := struct {
		Layout     Layout `json:"layout"`
		Components []Node `json:"components"`
	}{
		Layout:     doc.Layout,
		Components: doc.Components,
	}
	if payload.Components == nil {
		payload.Components = []Node{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("schema: encode fingerprint payload: %w", err)
	}
	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("schema: canonicalise fingerprint payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// SameContent reports whether two documents describe the same interface.
// Documents that cannot be fingerprinted never compare equal.
func SameContent(a, b Document) bool {
	fa, err := Fingerprint(a)
	if err != nil {
		return false
	}
	fb, err := Fingerprint(b)
	if err != nil {
		return false
	}
	return fa == fb
}
