package bot

import (
	"strings"
	"testing"

	"github.com/iconidentify/sharegrab/internal/domain"
)

const testCeiling = 50 * 1024 * 1024

func TestMessageFor_EveryReasonIsDistinct(t *testing.T) {
	outcomes := []domain.Outcome{
		domain.Delivered(domain.PlatformInstagram, 2, 1<<20, 0),
		domain.Delivered(domain.PlatformInstagram, 1, 1<<20, 1),
		domain.Rejected(domain.PlatformUnsupported, domain.RejectUnsupportedPlatform),
		domain.Rejected(domain.PlatformInstagram, domain.RejectPrivateContent),
		domain.Rejected(domain.PlatformYouTube, domain.RejectOversized),
		domain.Rejected(domain.PlatformTikTok, domain.RejectNoMediaFound),
		domain.Failed(domain.PlatformFacebook, domain.FailNetwork),
		domain.Failed(domain.PlatformYouTube, domain.FailTimeout),
		domain.Failed(domain.PlatformInstagram, domain.FailExtraction),
	}

	seen := make(map[string]string)
	for _, o := range outcomes {
		msg := messageFor(o, testCeiling)
		if msg == "" {
			t.Errorf("messageFor(%s/%s) returned empty message", o.Status, o.Reason())
			continue
		}
		if prev, dup := seen[msg]; dup {
			t.Errorf("outcome %s/%s shares its message with %s", o.Status, o.Reason(), prev)
		}
		seen[msg] = string(o.Status) + "/" + o.Reason()
	}
}

func TestMessageFor_OversizedNamesTheLimit(t *testing.T) {
	msg := messageFor(domain.Rejected(domain.PlatformYouTube, domain.RejectOversized), testCeiling)
	if !strings.Contains(msg, "50 MB") {
		t.Errorf("oversized message %q should name the 50 MB limit", msg)
	}
}

func TestMessageFor_SkippedItemsExplained(t *testing.T) {
	msg := messageFor(domain.Delivered(domain.PlatformInstagram, 2, 4<<20, 1), testCeiling)
	if !strings.Contains(msg, "skipped") {
		t.Errorf("partial delivery message %q should mention skipped items", msg)
	}
}

func TestCaptionErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrEmptyTopic, "topic"},
		{domain.ErrTopicTooLong, "too long"},
		{domain.ErrQuotaExceeded, "minute"},
		{domain.ErrInvalidAPIKey, "not configured"},
		{domain.ErrUpstream, "error"},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		msg := captionErrorMessage(tt.err)
		if !strings.Contains(strings.ToLower(msg), tt.want) {
			t.Errorf("captionErrorMessage(%v) = %q, want mention of %q", tt.err, msg, tt.want)
		}
		if seen[msg] {
			t.Errorf("caption error %v shares its message with another error", tt.err)
		}
		seen[msg] = true
	}
}
