package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fishguard/internal/adapters/feeds"
	corpusdom "fishguard/internal/services/corpus/domain"
	corpussvc "fishguard/internal/services/corpus/service"
)

func newTestRefresher(store *corpussvc.Store, snaps corpusdom.SnapshotPort, fs ...feeds.Feed) *Refresher {
	return New(store, snaps, fs, Config{})
}

type fakeFeed struct {
	name  string
	urls  []string
	err   error
	calls atomic.Int32
	block chan struct{} // when set, Fetch waits before returning
}

func (f *fakeFeed) Name() string { return f.name }

func (f *fakeFeed) Fetch(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.urls, f.err
}

type fakeSnaps struct {
	mu      sync.Mutex
	snap    corpusdom.Snapshot
	ok      bool
	loadErr error
	saveErr error
	saved   []corpusdom.Snapshot
}

func (s *fakeSnaps) Load(context.Context) (corpusdom.Snapshot, bool, error) {
	return s.snap, s.ok, s.loadErr
}

func (s *fakeSnaps) Save(_ context.Context, snap corpusdom.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snap)
	return s.saveErr
}

func TestRefresh_IsolatedFeedFailure(t *testing.T) {
	store := corpussvc.New()
	snaps := &fakeSnaps{}
	good := &fakeFeed{name: "good", urls: []string{
		"https://evil.example.net/a",
		"https://evil.example.net/b",
	}}
	bad := &fakeFeed{name: "bad", err: errors.New("boom")}

	r := newTestRefresher(store, snaps, good, bad)

	rep, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(rep.Feeds) != 2 {
		t.Fatalf("feed results = %+v", rep.Feeds)
	}
	if rep.Feeds[0].URLs != 2 || rep.Feeds[0].Err != "" {
		t.Fatalf("good feed result = %+v", rep.Feeds[0])
	}
	if rep.Feeds[1].Err == "" {
		t.Fatalf("bad feed result = %+v", rep.Feeds[1])
	}
	if rep.URLs == 0 || rep.Domains == 0 {
		t.Fatalf("report counts = %+v", rep)
	}

	if !store.Ready() {
		t.Fatal("store not published")
	}
	if m := store.Check("https://evil.example.net/a"); !m.IsPhishing {
		t.Fatalf("published corpus missing url: %+v", m)
	}
	if len(snaps.saved) != 1 {
		t.Fatalf("saved %d snapshots", len(snaps.saved))
	}
}

func TestRefresh_SnapshotSaveFailureIsNonFatal(t *testing.T) {
	store := corpussvc.New()
	snaps := &fakeSnaps{saveErr: errors.New("db down")}
	f := &fakeFeed{name: "good", urls: []string{"https://evil.example.net/a"}}

	r := newTestRefresher(store, snaps, f)
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !store.Ready() {
		t.Fatal("publish must survive a failed snapshot save")
	}
}

func TestRefresh_SingleFlight(t *testing.T) {
	store := corpussvc.New()
	f := &fakeFeed{name: "slow", urls: []string{"https://evil.example.net/a"}, block: make(chan struct{})}
	r := newTestRefresher(store, &fakeSnaps{}, f)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := r.Refresh(context.Background()); err != nil {
				t.Errorf("Refresh: %v", err)
			}
		}()
	}
	close(start)
	// let both callers reach the singleflight group before releasing the feed
	time.Sleep(50 * time.Millisecond)
	close(f.block)
	wg.Wait()

	if got := f.calls.Load(); got != 1 {
		t.Fatalf("feed fetched %d times, want 1", got)
	}
}

func TestRestore_FreshSnapshotUsedAsIs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := bigSnapshot(150, now.Add(-time.Hour))

	store := corpussvc.New()
	r := newTestRefresher(store, &fakeSnaps{snap: snap, ok: true})
	r.now = func() time.Time { return now }

	if !r.restore(context.Background()) {
		t.Fatal("fresh snapshot must be used as-is")
	}
	if !store.Ready() || store.Stats().URLs < 150 {
		t.Fatalf("stats = %+v", store.Stats())
	}
}

func TestRestore_StaleSnapshotForcesRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := bigSnapshot(150, now.Add(-7*time.Hour))

	r := newTestRefresher(corpussvc.New(), &fakeSnaps{snap: snap, ok: true})
	r.now = func() time.Time { return now }

	if r.restore(context.Background()) {
		t.Fatal("stale snapshot must force a refresh")
	}
}

func TestRestore_TinySnapshotForcesRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := bigSnapshot(10, now.Add(-time.Hour))

	store := corpussvc.New()
	r := newTestRefresher(store, &fakeSnaps{snap: snap, ok: true})
	r.now = func() time.Time { return now }

	if r.restore(context.Background()) {
		t.Fatal("implausibly small snapshot must force a refresh")
	}
	// the tiny snapshot still serves lookups until the refresh lands
	if !store.Ready() {
		t.Fatal("restored corpus should be live while refreshing")
	}
}

func TestRestore_MissingOrFailedLoad(t *testing.T) {
	r := newTestRefresher(corpussvc.New(), &fakeSnaps{ok: false})
	if r.restore(context.Background()) {
		t.Fatal("missing snapshot must force a refresh")
	}

	r = newTestRefresher(corpussvc.New(), &fakeSnaps{loadErr: errors.New("db down")})
	if r.restore(context.Background()) {
		t.Fatal("failed load must force a refresh")
	}
}

func bigSnapshot(n int, savedAt time.Time) corpusdom.Snapshot {
	var urls []string
	var domains []string
	for i := 0; i < n; i++ {
		urls = append(urls, fmt.Sprintf("https://h%d.example.net/p", i))
		domains = append(domains, fmt.Sprintf("h%d.example.net", i))
	}
	return corpusdom.Snapshot{
		URLs:       urls,
		Domains:    domains,
		LastUpdate: savedAt,
		LastSave:   savedAt,
	}
}
