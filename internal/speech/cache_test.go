package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type stubBackend struct {
	calls int
	data  []byte
	err   error
}

func (s *stubBackend) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, "audio/mpeg", nil
}

func TestCachedSynthesizerHitsBackendOnce(t *testing.T) {
	backend := &stubBackend{data: []byte("mp3-bytes")}
	c := NewCachedSynthesizer(backend, t.TempDir(), "")

	for i := 0; i < 3; i++ {
		data, mime, err := c.Synthesize(context.Background(), "ようこそ")
		if err != nil {
			t.Fatalf("Synthesize: %v", err)
		}
		if string(data) != "mp3-bytes" || mime != "audio/mpeg" {
			t.Fatalf("unexpected result %q %q", data, mime)
		}
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
}

func TestCachedSynthesizerPrefersOverride(t *testing.T) {
	backend := &stubBackend{data: []byte("synth")}
	audioDir := t.TempDir()

	h := sha256.Sum256([]byte("ようこそ"))
	key := hex.EncodeToString(h[:16])
	if err := os.WriteFile(filepath.Join(audioDir, key+".mp3"), []byte("recorded"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCachedSynthesizer(backend, t.TempDir(), audioDir)
	data, _, err := c.Synthesize(context.Background(), "ようこそ")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(data) != "recorded" {
		t.Errorf("got %q, want pre-recorded audio", data)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times, want 0", backend.calls)
	}
}

func TestCachedSynthesizerDoesNotCacheFailures(t *testing.T) {
	backend := &stubBackend{err: errors.New("boom")}
	c := NewCachedSynthesizer(backend, t.TempDir(), "")

	if _, _, err := c.Synthesize(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	backend.err = nil
	backend.data = []byte("ok")
	data, _, err := c.Synthesize(context.Background(), "x")
	if err != nil {
		t.Fatalf("Synthesize after recovery: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("got %q, want %q", data, "ok")
	}
}
