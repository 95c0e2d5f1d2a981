package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
)

// CachedSynthesizer wraps a backend with an on-disk cache. It checks:
// 1. Pre-recorded audio overrides in audioDir
// 2. Cached synthesis results in cacheDir
// 3. The wrapped backend
type CachedSynthesizer struct {
	backend  Synthesizer
	cacheDir string
	audioDir string
	mu       sync.Mutex
}

func NewCachedSynthesizer(backend Synthesizer, cacheDir, audioDir string) *CachedSynthesizer {
	os.MkdirAll(cacheDir, 0o755)
	return &CachedSynthesizer{
		backend:  backend,
		cacheDir: cacheDir,
		audioDir: audioDir,
	}
}

func (c *CachedSynthesizer) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:16])
}

func (c *CachedSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	key := c.cacheKey(text)
	if c.audioDir != "" {
		if data, err := os.ReadFile(filepath.Join(c.audioDir, key+".mp3")); err == nil {
			return data, "audio/mpeg", nil
		}
	}

	cachePath := filepath.Join(c.cacheDir, key+".mp3")
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, "audio/mpeg", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check cache after acquiring lock
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, "audio/mpeg", nil
	}

	data, mime, err := c.backend.Synthesize(ctx, text)
	if err != nil {
		// Don't cache failures, just surface the error.
		return nil, "", err
	}
	os.WriteFile(cachePath, data, 0o644)
	return data, mime, nil
}
