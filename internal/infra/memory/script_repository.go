package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"escape-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ScriptLoader fetches script content from a backing store (e.g., Postgres).
type ScriptLoader interface {
	LoadScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// ScriptRepository caches scripts with TTL to avoid repeated store hits.
type ScriptRepository struct {
	loader ScriptLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedScript
}

type cachedScript struct {
	script    domain.Script
	expiresAt time.Time
}

func NewScriptRepository(loader ScriptLoader, ttl time.Duration) *ScriptRepository {
	return &ScriptRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedScript),
	}
}

func (r *ScriptRepository) GetScript(ctx context.Context, scriptID string) (domain.Script, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[scriptID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.script, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(scriptID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[scriptID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.script, nil
		}
		r.mu.RUnlock()

		script, err := r.loader.LoadScript(ctx, scriptID)
		if err != nil {
			return domain.Script{}, err
		}

		r.mu.Lock()
		r.cache[scriptID] = cachedScript{
			script:    script,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return script, nil
	})
	if err != nil {
		return domain.Script{}, err
	}
	return result.(domain.Script), nil
}

// StaticScriptLoader serves scripts from an in-memory map (the bundled
// content, tests, demos).
type StaticScriptLoader struct {
	scripts map[string]domain.Script
}

func NewStaticScriptLoader(scripts map[string]domain.Script) *StaticScriptLoader {
	return &StaticScriptLoader{scripts: scripts}
}

func (l *StaticScriptLoader) LoadScript(_ context.Context, scriptID string) (domain.Script, error) {
	if script, ok := l.scripts[scriptID]; ok {
		return script, nil
	}
	return domain.Script{}, domain.ErrScriptNotFound
}

func (r *ScriptRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
