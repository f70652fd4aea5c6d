package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	seed := NewSessionState("session-1", now)
	seed.Ledger.SetStatus(LegFlight, BookingBooked)
	seed.Ledger.SetDetails(LegFlight, map[string]string{"summary": "AI-302"})

	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Ledger.Flight.Booked() {
		t.Fatalf("loaded state lost the booked flag")
	}
	if got.Ledger.Flight.Detail("summary") != "AI-302" {
		t.Fatalf("loaded state lost details: %+v", got.Ledger.Flight)
	}

	// Saved payload is a snapshot: mutating the original must not leak.
	seed.Ledger.SetDetails(LegFlight, map[string]string{"summary": "changed"})
	got, err = store.Load(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Load() after mutation error = %v", err)
	}
	if got.Ledger.Flight.Detail("summary") != "AI-302" {
		t.Fatalf("store must hold a snapshot, got %q", got.Ledger.Flight.Detail("summary"))
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	_, err := store.Load(context.Background(), "missing")
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}

	if err := store.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete() of missing session error = %v", err)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if err := store.Save(context.Background(), nil); !errors.Is(err, ErrNilSessionState) {
		t.Fatalf("Save(nil) error = %v, want ErrNilSessionState", err)
	}
	if err := store.Save(context.Background(), &SessionState{}); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Save(empty id) error = %v, want ErrInvalidSession", err)
	}
	if _, err := store.Load(context.Background(), "  "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Load(blank id) error = %v, want ErrInvalidSession", err)
	}
}

func TestLoadOrCreate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	st, err := LoadOrCreate(context.Background(), store, "session-1", now)
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}
	if st.Dialogue != DialogueIdle || st.Log.Len() != 0 {
		t.Fatalf("fresh session expected, got %+v", st)
	}

	st.Ledger.SetStatus(LegCab, BookingInProgress)
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	again, err := LoadOrCreate(context.Background(), store, "session-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("LoadOrCreate() reload error = %v", err)
	}
	if again.Ledger.Cab.Status != BookingInProgress {
		t.Fatalf("reload must return the stored session, got %+v", again.Ledger.Cab)
	}
}

func TestUpstashRedisStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{keyPrefix: defaultStoreKeyPrefix}
	got, err := store.redisKey("abc")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "travel:session:abc" {
		t.Fatalf("redisKey() = %q, want %q", got, "travel:session:abc")
	}

	if _, err := store.redisKey("   "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("redisKey(blank) error = %v, want ErrInvalidSession", err)
	}
}

func TestUpstashRedisStoreSaveSetsTTL(t *testing.T) {
	t.Parallel()

	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(time.Hour),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	state := NewSessionState("session-1", time.Now().UTC())
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 5 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "SET" {
		t.Fatalf("command[0] = %v, want SET", gotCommand[0])
	}
	if gotCommand[1] != "travel:session:session-1" {
		t.Fatalf("command[1] = %v, want prefixed key", gotCommand[1])
	}
	if gotCommand[3] != "EX" {
		t.Fatalf("command[3] = %v, want EX", gotCommand[3])
	}
	if seconds, ok := gotCommand[4].(float64); !ok || seconds != 3600 {
		t.Fatalf("command[4] = %v, want 3600", gotCommand[4])
	}
}

func TestUpstashRedisStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()

	seed := NewSessionState("session-2", time.Now().UTC())
	seed.Ledger.SetStatus(LegFlight, BookingBooked)
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	encoded, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatalf("marshal encoded seed: %v", err)
	}

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	st, err := store.Load(context.Background(), "session-2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.SessionID != "session-2" {
		t.Fatalf("Load().SessionID = %q, want session-2", st.SessionID)
	}
	if !st.Ledger.Flight.Booked() {
		t.Fatalf("loaded state lost the booked flag")
	}

	if len(gotCommand) < 2 || gotCommand[0] != "GET" {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[1] != "travel:session:session-2" {
		t.Fatalf("command[1] = %v, want prefixed key", gotCommand[1])
	}
}

func TestUpstashRedisStoreLoadMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	_, err = store.Load(context.Background(), "missing")
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}
}

func TestUpstashRedisStoreRESTError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"WRONGPASS invalid token"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "bad",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	_, err = store.Load(context.Background(), "session-1")
	if err == nil || err.Error() != "WRONGPASS invalid token" {
		t.Fatalf("Load() error = %v, want REST error surfaced", err)
	}
}

func TestTTLSeconds(t *testing.T) {
	t.Parallel()

	if got := ttlSeconds(90 * time.Second); got != 90 {
		t.Fatalf("ttlSeconds(90s) = %d, want 90", got)
	}
	if got := ttlSeconds(1500 * time.Millisecond); got != 2 {
		t.Fatalf("ttlSeconds(1.5s) = %d, want round up to 2", got)
	}
	if got := ttlSeconds(time.Millisecond); got != 1 {
		t.Fatalf("ttlSeconds(1ms) = %d, want floor of 1", got)
	}
}
