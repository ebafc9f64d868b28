// Package name implements the "namespace:name" identifier grammar and file
// ID generation used throughout the catalog. Grounded on
// original_source/metacat/db/dbobjects2.py's parse_name and DBFile's FID
// generation.
package name

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/scicatalog/catalog/catalogerr"
)

// Parse splits "namespace:name" on the first colon. A missing or empty
// namespace falls back to defaultNamespace; if that is also empty, Parse
// fails with InvalidName.
func Parse(input, defaultNamespace string) (namespace, bareName string, err error) {
	words := strings.SplitN(input, ":", 2)
	if len(words) < 2 || words[0] == "" {
		if defaultNamespace == "" {
			return "", "", catalogerr.Newf(catalogerr.InvalidName, "no namespace given for %q and no default namespace set", input)
		}
		return defaultNamespace, words[len(words)-1], nil
	}
	return words[0], words[1], nil
}

// Join renders "namespace:name" back into the compact form.
func Join(namespace, bareName string) string {
	return namespace + ":" + bareName
}

// NewFileID returns a fresh 128-bit identifier as 32 lowercase hex
// characters. crypto/rand is used directly rather than a UUID library: the
// spec's wire format is a bare hex string, not a dashed, versioned UUID, so
// pulling in a UUID package would produce the wrong shape (see DESIGN.md).
func NewFileID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// unavailable, which is unrecoverable for this process.
		panic("name: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}
