package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyStore remembers responses by idempotency key so a retried
// mutation replays the original outcome instead of re-running it
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopChan chan struct{}
}

// idempotencyEntry fields are immutable once inFlight flips to false;
// the done channel close publishes them to waiting duplicates
type idempotencyEntry struct {
	status    int
	header    http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep cached responses (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a store and starts its cleanup loop
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	close(s.stopChan)
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purgeExpired()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// begin claims key for processing. When a live entry already exists the
// caller replays it instead; owner is true only for the request that
// must execute and later call complete.
func (s *IdempotencyStore) begin(key string) (entry *idempotencyEntry, owner bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		if existing.inFlight || existing.expiresAt.After(time.Now()) {
			return existing, false
		}
	}

	entry = &idempotencyEntry{inFlight: true, done: make(chan struct{})}
	s.entries[key] = entry
	return entry, true
}

// complete records the response and wakes any duplicates waiting on it
func (s *IdempotencyStore) complete(entry *idempotencyEntry, status int, header http.Header, body []byte) {
	s.mu.Lock()
	entry.status = status
	entry.header = header
	entry.body = body
	entry.expiresAt = time.Now().Add(s.ttl)
	entry.inFlight = false
	s.mu.Unlock()
	close(entry.done)
}

// replay writes a completed entry's response, flagged as a replay
func (e *idempotencyEntry) replay(w http.ResponseWriter) {
	for name, values := range e.header {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(e.status)
	_, _ = w.Write(e.body)
}

// requestKey fingerprints the request so the same key with a different
// body or path is treated as a distinct request
func requestKey(userID, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte(idempotencyKey))
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// responseCapture tees the response so it can be cached for replay
type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *responseCapture) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays cached responses for POST and PATCH requests that
// repeat an Idempotency-Key. In-flight duplicates block until the first
// request finishes, then replay its response.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID := GetUserID(r.Context())
			if userID == "" {
				// Anonymous callers are scoped by peer address
				userID = r.RemoteAddr
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := requestKey(userID, idempotencyKey, r.Method, r.URL.Path, body)

			entry, owner := store.begin(key)
			if !owner {
				<-entry.done
				entry.replay(w)
				return
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			store.complete(entry, capture.status, capture.Header().Clone(), capture.body.Bytes())
		})
	}
}
