package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/sharegrab/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "journal.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func record(store *Store, id string, outcome domain.Outcome) {
	store.Record(context.Background(), domain.LinkRequest{
		ID:             domain.RequestID(id),
		RawURL:         "https://www.instagram.com/p/" + id + "/",
		ConversationID: "42",
		ReceivedAt:     time.Now(),
	}, outcome)
}

func TestStats_Empty(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Total)
	}
}

func TestRecordAndStats(t *testing.T) {
	store := newTestStore(t)

	record(store, "a", domain.Delivered(domain.PlatformInstagram, 2, 1<<20, 0))
	record(store, "b", domain.Delivered(domain.PlatformYouTube, 1, 2<<20, 0))
	record(store, "c", domain.Rejected(domain.PlatformInstagram, domain.RejectPrivateContent))
	record(store, "d", domain.Failed(domain.PlatformTikTok, domain.FailNetwork))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Delivered != 2 {
		t.Errorf("Delivered = %d, want 2", stats.Delivered)
	}
	if stats.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", stats.Rejected)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if want := int64(3 << 20); stats.BytesSent != want {
		t.Errorf("BytesSent = %d, want %d", stats.BytesSent, want)
	}
	if stats.PerPlatform["instagram"] != 2 {
		t.Errorf("PerPlatform[instagram] = %d, want 2", stats.PerPlatform["instagram"])
	}
	if stats.PerPlatform["youtube"] != 1 {
		t.Errorf("PerPlatform[youtube] = %d, want 1", stats.PerPlatform["youtube"])
	}
	if stats.PerReason["private-content"] != 1 {
		t.Errorf("PerReason[private-content] = %d, want 1", stats.PerReason["private-content"])
	}
	if stats.PerReason["network"] != 1 {
		t.Errorf("PerReason[network] = %d, want 1", stats.PerReason["network"])
	}
}

func TestStats_DeliveredHasNoReason(t *testing.T) {
	store := newTestStore(t)

	record(store, "a", domain.Delivered(domain.PlatformInstagram, 1, 100, 0))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if len(stats.PerReason) != 0 {
		t.Errorf("PerReason = %v, delivered outcomes carry no reason", stats.PerReason)
	}
}

func TestStore_ConcurrentRecordAndStats(t *testing.T) {
	store := newTestStore(t)

	const goroutines = 4
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				record(store, fmt.Sprintf("g%d_%d", g, i), domain.Delivered(domain.PlatformInstagram, 1, 100, 0))
				if _, err := store.Stats(context.Background()); err != nil {
					t.Errorf("Stats() during concurrent writes: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if want := goroutines * perGoroutine; stats.Total != want {
		t.Errorf("Total = %d, want %d (writes must not be dropped under contention)", stats.Total, want)
	}
}

func TestStore_ReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := NewStore(path, logger)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	record(store, "a", domain.Delivered(domain.PlatformInstagram, 1, 100, 0))
	store.Close()

	reopened, err := NewStore(path, logger)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	stats, err := reopened.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Total after reopen = %d, want 1", stats.Total)
	}
}
