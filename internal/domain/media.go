package domain

// MediaKind classifies a single extractable media item.
type MediaKind string

const (
	MediaVideo      MediaKind = "video"
	MediaImage      MediaKind = "image"
	MediaStoryFrame MediaKind = "story"
)

// MediaDescriptor describes one retrievable media item resolved by an
// extractor. EstimatedSize is advisory; the actual downloaded size is the
// authority for the delivery ceiling check.
type MediaDescriptor struct {
	Kind          MediaKind
	SourceURL     string
	EstimatedSize int64
	Caption       string // page title or description, if the platform exposes one
	Index         int    // position within the original post, preserved through delivery
}

// StagedAsset is a MediaDescriptor materialized to scratch storage.
// Ownership passes from the stage manager to the dispatcher for the
// duration of the send; the backing file never outlives the delivery
// attempt.
type StagedAsset struct {
	Descriptor MediaDescriptor
	Path       string
	Size       int64 // actual byte count on disk
}
