package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"escape-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ScriptLoader fetches script content from a backing store (e.g., Postgres).
type ScriptLoader interface {
	LoadScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// ScriptRepository caches whole scripts as JSON (SET script:{id}) and falls
// back to a loader on cache miss. Scripts are small and immutable per
// variant, so one key per script beats per-field hashes.
type ScriptRepository struct {
	client *redis.Client
	loader ScriptLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewScriptRepository(client *redis.Client, loader ScriptLoader, ttl time.Duration) *ScriptRepository {
	return &ScriptRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ScriptRepository) GetScript(ctx context.Context, scriptID string) (domain.Script, error) {
	key := r.key(scriptID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var script domain.Script
		if err := json.Unmarshal(raw, &script); err == nil {
			return script, nil
		}
		// Corrupt cache entry: drop it and reload.
		_ = r.client.Del(ctx, key).Err()
	}

	result, err, _ := r.sf.Do(scriptID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var script domain.Script
			if err := json.Unmarshal(raw, &script); err == nil {
				return script, nil
			}
		}

		script, err := r.loader.LoadScript(ctx, scriptID)
		if err != nil {
			return domain.Script{}, err
		}

		if raw, err := json.Marshal(script); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return script, nil
	})
	if err != nil {
		return domain.Script{}, err
	}
	return result.(domain.Script), nil
}

func (r *ScriptRepository) key(scriptID string) string {
	return "script:" + scriptID
}

func (r *ScriptRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
