package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store persists fetched snapshots so a restart can seed the pose solver
// offline. Implemented by persistence/telemetry.
type Store interface {
	PutSnapshot(epoch string, blob []byte) error
	LatestSnapshot() (epoch string, blob []byte, err error)
}

// Service fetches and caches ephemeris snapshots. All failures degrade to
// a nil snapshot; callers never treat that as an error.
type Service struct {
	baseURL string
	client  *http.Client
	cache   *lru.Cache[string, *Snapshot]
	store   Store
	log     *log.Logger

	retries int
	backoff time.Duration
}

// NewService builds a fetcher against a Horizons-style vector endpoint.
// store may be nil (no offline persistence).
func NewService(baseURL string, store Store, logger *log.Logger) *Service {
	cache, _ := lru.New[string, *Snapshot](16)
	return &Service{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		store:   store,
		log:     logger,
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
}

// epochKey buckets snapshots by hour; body positions drift far slower than
// that at scene precision.
func epochKey(t time.Time) string { return t.UTC().Format("2006-01-02T15") }

// Current returns the snapshot for now: from the in-memory cache, then a
// live fetch, then the newest persisted snapshot, then nil.
func (s *Service) Current(ctx context.Context, names []string) *Snapshot {
	key := epochKey(time.Now())
	if snap, ok := s.cache.Get(key); ok {
		return snap
	}
	snap, err := s.fetch(ctx, names)
	if err == nil {
		s.cache.Add(key, snap)
		s.persist(key, snap)
		return snap
	}
	if s.log != nil {
		s.log.Printf("ephemeris fetch failed, trying persisted: %v", err)
	}
	if snap := s.loadPersisted(); snap != nil {
		s.cache.Add(key, snap)
		return snap
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, names []string) (*Snapshot, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("no ephemeris endpoint configured")
	}
	snap := &Snapshot{Epoch: time.Now().UTC(), Bodies: make(map[string]BodyState, len(names))}
	for _, name := range names {
		text, err := s.fetchBody(ctx, name)
		if err != nil {
			// Partial snapshots are fine; the solver falls back per body.
			continue
		}
		vec, err := ParseVector(text)
		if err != nil {
			continue
		}
		snap.Bodies[name] = BodyState{Vector: vec, RadiusKm: ParseRadiusKm(text)}
	}
	if len(snap.Bodies) == 0 {
		return nil, fmt.Errorf("no bodies resolved")
	}
	return snap, nil
}

func (s *Service) fetchBody(ctx context.Context, name string) (string, error) {
	u := fmt.Sprintf("%s?body=%s&type=VECTORS", s.baseURL, url.QueryEscape(name))
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return "", err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%s: status %d", name, resp.StatusCode)
			continue
		}
		return string(body), nil
	}
	return "", fmt.Errorf("fetch %s: %w", name, lastErr)
}

func (s *Service) persist(epoch string, snap *Snapshot) {
	if s.store == nil {
		return
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.store.PutSnapshot(epoch, blob); err != nil && s.log != nil {
		s.log.Printf("persist ephemeris snapshot: %v", err)
	}
}

func (s *Service) loadPersisted() *Snapshot {
	if s.store == nil {
		return nil
	}
	_, blob, err := s.store.LatestSnapshot()
	if err != nil || len(blob) == 0 {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil
	}
	return &snap
}
