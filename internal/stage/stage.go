// Package stage materializes admitted media to scratch storage and
// guarantees that no staged bytes outlive their request.
package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/fetch"
)

// Store owns the scratch directory. It is passed in explicitly rather
// than shared as a global path so tests and the sweep utility can scope
// their own storage.
type Store struct {
	dir     string
	ceiling int64
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

// NewStore creates the scratch store, ensuring the directory exists and
// sweeping any files orphaned by a previous crash.
func NewStore(dir string, ceiling int64, fetcher fetch.Fetcher, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	s := &Store{
		dir:     dir,
		ceiling: ceiling,
		fetcher: fetcher,
		logger:  logger,
	}

	// Anything present at startup belongs to no live request.
	if n, err := s.Sweep(0); err != nil {
		return nil, fmt.Errorf("startup sweep: %w", err)
	} else if n > 0 {
		logger.Info("removed orphaned scratch files", "count", n)
	}

	return s, nil
}

// Dir returns the scratch directory path.
func (s *Store) Dir() string {
	return s.dir
}

// FreeSpace reports the free bytes on the volume holding the scratch
// directory, or zero when it cannot be determined.
func (s *Store) FreeSpace() int64 {
	return freeDiskSpace(s.dir)
}

// Sweep removes scratch files older than maxAge (all files when maxAge
// is zero) and returns the number removed. Sweeping is idempotent.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read scratch dir: %w", err)
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if maxAge > 0 {
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Begin opens a staging session scoped to one request. The session must
// be closed on every exit path; Close removes whatever is still staged.
func (s *Store) Begin(requestID domain.RequestID) *Session {
	return &Session{
		store:     s,
		requestID: requestID,
		staged:    make(map[string]struct{}),
	}
}

// Session tracks the scratch files of a single request.
type Session struct {
	store     *Store
	requestID domain.RequestID

	mu     sync.Mutex
	staged map[string]struct{}
}

// Stage transfers one descriptor's bytes into scratch storage and records
// the actual size. If the actual size exceeds the ceiling (the estimate
// was wrong), the file is discarded and ErrOversized is returned for this
// item alone; the caller continues with the rest of the batch.
func (sn *Session) Stage(ctx context.Context, d domain.MediaDescriptor) (*domain.StagedAsset, error) {
	reader, _, err := sn.store.fetcher.Fetch(ctx, d.SourceURL)
	if err != nil {
		return nil, domain.NewRequestError(sn.requestID, "stage", err)
	}
	defer reader.Close()

	// uuid filenames guarantee no two in-flight requests overlap.
	name := fmt.Sprintf("%s_%s%s", sn.requestID, uuid.New().String()[:8], extensionFor(d))
	path := filepath.Join(sn.store.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, domain.NewRequestError(sn.requestID, "stage", err)
	}

	sn.track(path)

	// Stop reading one byte past the ceiling; the exact size of an
	// over-limit item is irrelevant.
	written, copyErr := io.Copy(f, io.LimitReader(reader, sn.store.ceiling+1))
	closeErr := f.Close()

	if copyErr != nil || closeErr != nil {
		sn.Discard(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, domain.NewRequestError(sn.requestID, "stage", copyErr)
	}

	if written > sn.store.ceiling {
		sn.Discard(path)
		return nil, domain.NewRequestError(sn.requestID, "stage", domain.ErrOversized)
	}

	return &domain.StagedAsset{
		Descriptor: d,
		Path:       path,
		Size:       written,
	}, nil
}

// Discard removes one staged file. Safe to call more than once.
func (sn *Session) Discard(path string) {
	sn.mu.Lock()
	delete(sn.staged, path)
	sn.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		sn.store.logger.Error("discard staged file", "path", path, "error", err)
	}
}

// Close removes every file the session still holds. It runs on success,
// rejection, failure and cancellation alike.
func (sn *Session) Close() {
	sn.mu.Lock()
	remaining := make([]string, 0, len(sn.staged))
	for path := range sn.staged {
		remaining = append(remaining, path)
	}
	sn.mu.Unlock()

	for _, path := range remaining {
		sn.Discard(path)
	}
}

func (sn *Session) track(path string) {
	sn.mu.Lock()
	sn.staged[path] = struct{}{}
	sn.mu.Unlock()
}

func extensionFor(d domain.MediaDescriptor) string {
	switch d.Kind {
	case domain.MediaImage:
		return ".jpg"
	case domain.MediaStoryFrame:
		// Story frames carry either kind; trust the source URL when it
		// names an image.
		if u, err := url.Parse(d.SourceURL); err == nil {
			switch filepath.Ext(u.Path) {
			case ".jpg", ".jpeg", ".png", ".webp":
				return ".jpg"
			}
		}
		return ".mp4"
	default:
		return ".mp4"
	}
}
