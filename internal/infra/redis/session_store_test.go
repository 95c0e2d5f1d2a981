package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	_ = store.GetOrCreate("team-1", "principals-office")
	if !mr.Exists("game:session:team-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get("game:session:team-1"); got != "principals-office" {
		t.Fatalf("expected script id marker, got %q", got)
	}

	store.Delete("team-1")
	if mr.Exists("game:session:team-1") {
		t.Fatalf("expected redis key to be removed")
	}
}
