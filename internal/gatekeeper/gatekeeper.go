// Package gatekeeper enforces the delivery channel's payload limits
// before any download is committed.
package gatekeeper

import (
	"github.com/iconidentify/sharegrab/internal/domain"
)

// Gatekeeper admits media descriptors against the transport's size
// ceiling and supported kinds. Estimated sizes are advisory: an unknown
// estimate passes through, and the stage manager re-checks actual bytes.
type Gatekeeper struct {
	ceiling int64
	kinds   map[domain.MediaKind]bool
}

// New creates a gatekeeper for the given ceiling and supported kinds.
func New(ceiling int64, kinds ...domain.MediaKind) *Gatekeeper {
	set := make(map[domain.MediaKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return &Gatekeeper{
		ceiling: ceiling,
		kinds:   set,
	}
}

// Ceiling returns the configured maximum payload size.
func (g *Gatekeeper) Ceiling() int64 {
	return g.ceiling
}

// Admit filters a descriptor batch. Items within budget pass through
// individually; partial admission of a multi-item carousel is allowed,
// with the remainder counted as skipped, not failed. When every item
// exceeds the ceiling the whole batch is rejected as oversized.
func (g *Gatekeeper) Admit(batch []domain.MediaDescriptor) ([]domain.MediaDescriptor, int, error) {
	if len(batch) == 0 {
		return nil, 0, domain.ErrNoMedia
	}

	admitted := make([]domain.MediaDescriptor, 0, len(batch))
	skipped := 0
	oversized := 0

	for _, d := range batch {
		if !g.supports(d.Kind) {
			skipped++
			continue
		}
		if d.EstimatedSize > g.ceiling {
			skipped++
			oversized++
			continue
		}
		admitted = append(admitted, d)
	}

	if len(admitted) == 0 {
		if oversized > 0 {
			return nil, 0, domain.ErrOversized
		}
		return nil, 0, domain.ErrNoMedia
	}

	return admitted, skipped, nil
}

func (g *Gatekeeper) supports(kind domain.MediaKind) bool {
	if kind == domain.MediaStoryFrame {
		// Story frames deliver as their underlying media; the transport
		// accepts them whenever it accepts video or images.
		return g.kinds[domain.MediaVideo] || g.kinds[domain.MediaImage]
	}
	return g.kinds[kind]
}
