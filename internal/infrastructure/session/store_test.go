package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStorePutExistsDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Put(ctx, AccessToken, 1, "tok-a", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := s.Exists(ctx, AccessToken, 1, "tok-a")
	if err != nil || !ok {
		t.Fatalf("Exists after put = (%v, %v), want (true, nil)", ok, err)
	}

	// Different kind, user or token id all miss.
	if ok, _ := s.Exists(ctx, RefreshToken, 1, "tok-a"); ok {
		t.Error("refresh lookup hit an access entry")
	}
	if ok, _ := s.Exists(ctx, AccessToken, 2, "tok-a"); ok {
		t.Error("lookup hit another user's entry")
	}
	if ok, _ := s.Exists(ctx, AccessToken, 1, "tok-b"); ok {
		t.Error("lookup hit a different token id")
	}

	if err := s.Delete(ctx, AccessToken, 1, "tok-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := s.Exists(ctx, AccessToken, 1, "tok-a"); ok {
		t.Error("entry survived delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	current := time.Now()
	s.now = func() time.Time { return current }

	if err := s.Put(ctx, RefreshToken, 7, "tok-r", 10*time.Minute); err != nil {
		t.Fatal(err)
	}

	current = current.Add(9 * time.Minute)
	if ok, _ := s.Exists(ctx, RefreshToken, 7, "tok-r"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	current = current.Add(2 * time.Minute)
	if ok, _ := s.Exists(ctx, RefreshToken, 7, "tok-r"); ok {
		t.Fatal("entry still valid after its TTL")
	}
}

func TestMemoryStoreDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Put(ctx, AccessToken, 1, "a1", time.Minute)
	s.Put(ctx, AccessToken, 1, "a2", time.Minute)
	s.Put(ctx, RefreshToken, 1, "r1", time.Minute)
	s.Put(ctx, AccessToken, 2, "other", time.Minute)

	if err := s.DeleteAll(ctx, AccessToken, 1); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}

	for _, id := range []string{"a1", "a2"} {
		if ok, _ := s.Exists(ctx, AccessToken, 1, id); ok {
			t.Errorf("access token %s survived DeleteAll", id)
		}
	}
	if ok, _ := s.Exists(ctx, RefreshToken, 1, "r1"); !ok {
		t.Error("refresh token was revoked by an access-token DeleteAll")
	}
	if ok, _ := s.Exists(ctx, AccessToken, 2, "other"); !ok {
		t.Error("another user's token was revoked")
	}
}
