package stimulus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint returns the lowercase hexadecimal SHA-256 digest of the
// catalog: every identity in catalog order followed by its file contents.
// Two sessions with equal fingerprints saw byte-identical stimulus sets.
func (c *Catalog) Fingerprint() (string, error) {
	h := sha256.New()
	for _, s := range c.stimuli {
		io.WriteString(h, s.Identity)
		h.Write([]byte{0})

		f, err := os.Open(s.Path)
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", s.Identity, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", s.Identity, err)
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
