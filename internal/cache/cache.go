// Package cache provides the shared translation cache keyed by content hash.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// TranslationCache stores translated text keyed by Key(text, targetLang).
// Implementations are safe for concurrent use by the fragment pipelines;
// entries are never invalidated within a run.
type TranslationCache interface {
	// Get returns the cached translation for key if present.
	Get(key string) (string, bool)
	// Put stores a translation. original is kept for audit only.
	Put(key, original, translated string) error
	Close() error
}

// Key returns the stable cache key for a (text, target language) pair.
func Key(text, targetLang string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(targetLang))
	return hex.EncodeToString(h.Sum(nil))
}
