package domain

import (
	"time"
)

// RequestID is a unique identifier for a link request.
type RequestID string

// String returns the string representation of the RequestID.
func (id RequestID) String() string {
	return string(id)
}

// LinkRequest is a single inbound URL-bearing request from a user.
// It is immutable once created and discarded after a terminal outcome.
type LinkRequest struct {
	ID             RequestID
	RawURL         string
	ConversationID string
	ReceivedAt     time.Time
}

// PlatformKind identifies which platform handler applies to a URL.
type PlatformKind string

const (
	PlatformInstagram   PlatformKind = "instagram"
	PlatformYouTube     PlatformKind = "youtube"
	PlatformTikTok      PlatformKind = "tiktok"
	PlatformFacebook    PlatformKind = "facebook"
	PlatformUnsupported PlatformKind = "unsupported"
)

// String returns the string representation of the PlatformKind.
func (p PlatformKind) String() string {
	return string(p)
}

// Supported reports whether the platform has an extractor.
func (p PlatformKind) Supported() bool {
	return p != PlatformUnsupported && p != ""
}

// DisplayName returns the user-facing platform name.
func (p PlatformKind) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformYouTube:
		return "YouTube"
	case PlatformTikTok:
		return "TikTok"
	case PlatformFacebook:
		return "Facebook"
	default:
		return "Unsupported"
	}
}
