package classify

import (
	"testing"

	"github.com/iconidentify/sharegrab/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		platform  domain.PlatformKind
		canonical string
	}{
		{
			name:      "instagram post",
			raw:       "https://www.instagram.com/p/Cabc123_-x/",
			platform:  domain.PlatformInstagram,
			canonical: "https://www.instagram.com/p/Cabc123_-x/",
		},
		{
			name:      "instagram reel",
			raw:       "https://instagram.com/reel/Xyz789/",
			platform:  domain.PlatformInstagram,
			canonical: "https://www.instagram.com/reel/Xyz789/",
		},
		{
			name:      "instagram reels plural normalizes",
			raw:       "https://www.instagram.com/reels/Xyz789/",
			platform:  domain.PlatformInstagram,
			canonical: "https://www.instagram.com/reel/Xyz789/",
		},
		{
			name:      "instagram story",
			raw:       "https://www.instagram.com/stories/some.user/3141592653589793/",
			platform:  domain.PlatformInstagram,
			canonical: "https://www.instagram.com/stories/some.user/3141592653589793/",
		},
		{
			name:      "instagram with tracking params",
			raw:       "https://www.instagram.com/p/Cabc123/?igshid=tracking",
			platform:  domain.PlatformInstagram,
			canonical: "https://www.instagram.com/p/Cabc123/",
		},
		{
			name:      "instagram profile is not media",
			raw:       "https://www.instagram.com/someuser/",
			platform:  domain.PlatformUnsupported,
			canonical: "",
		},
		{
			name:      "youtube watch",
			raw:       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			platform:  domain.PlatformYouTube,
			canonical: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:      "youtube short link",
			raw:       "https://youtu.be/dQw4w9WgXcQ",
			platform:  domain.PlatformYouTube,
			canonical: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:      "youtube shorts",
			raw:       "https://www.youtube.com/shorts/abcDEF12345",
			platform:  domain.PlatformYouTube,
			canonical: "https://www.youtube.com/shorts/abcDEF12345",
		},
		{
			name:      "youtube mobile host",
			raw:       "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			platform:  domain.PlatformYouTube,
			canonical: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:      "youtube watch without id",
			raw:       "https://www.youtube.com/watch",
			platform:  domain.PlatformUnsupported,
			canonical: "",
		},
		{
			name:      "tiktok video",
			raw:       "https://www.tiktok.com/@some.user/video/7123456789012345678",
			platform:  domain.PlatformTikTok,
			canonical: "https://www.tiktok.com/@some.user/video/7123456789012345678",
		},
		{
			name:      "tiktok vm short link",
			raw:       "https://vm.tiktok.com/ZMabcdef/",
			platform:  domain.PlatformTikTok,
			canonical: "https://vm.tiktok.com/ZMabcdef",
		},
		{
			name:      "tiktok vt short link",
			raw:       "https://vt.tiktok.com/ZSabcdef",
			platform:  domain.PlatformTikTok,
			canonical: "https://vt.tiktok.com/ZSabcdef",
		},
		{
			name:      "facebook watch with id",
			raw:       "https://www.facebook.com/watch/?v=1234567890",
			platform:  domain.PlatformFacebook,
			canonical: "https://www.facebook.com/watch/?v=1234567890",
		},
		{
			name:      "facebook page video",
			raw:       "https://www.facebook.com/somepage/videos/1234567890/",
			platform:  domain.PlatformFacebook,
			canonical: "https://www.facebook.com/somepage/videos/1234567890",
		},
		{
			name:      "fb.watch short link",
			raw:       "https://fb.watch/abc123XYZ/",
			platform:  domain.PlatformFacebook,
			canonical: "https://fb.watch/abc123XYZ/",
		},
		{
			name:      "bare domain without scheme",
			raw:       "instagram.com/p/Cabc123/",
			platform:  domain.PlatformInstagram,
			canonical: "https://www.instagram.com/p/Cabc123/",
		},
		{
			name:      "surrounding whitespace",
			raw:       "  https://www.youtube.com/watch?v=dQw4w9WgXcQ  ",
			platform:  domain.PlatformYouTube,
			canonical: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:     "twitter is unsupported",
			raw:      "https://x.com/user/status/123456",
			platform: domain.PlatformUnsupported,
		},
		{
			name:     "arbitrary website",
			raw:      "https://example.com/watch?v=abc",
			platform: domain.PlatformUnsupported,
		},
		{
			name:     "plain text",
			raw:      "hello there",
			platform: domain.PlatformUnsupported,
		},
		{
			name:     "non-http scheme",
			raw:      "ftp://instagram.com/p/Cabc123/",
			platform: domain.PlatformUnsupported,
		},
		{
			name:     "empty input",
			raw:      "",
			platform: domain.PlatformUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform, canonical := Classify(tt.raw)
			if platform != tt.platform {
				t.Errorf("platform = %q, want %q", platform, tt.platform)
			}
			if tt.canonical != "" && canonical != tt.canonical {
				t.Errorf("canonical = %q, want %q", canonical, tt.canonical)
			}
		})
	}
}

func TestClassifyNeverErrors(t *testing.T) {
	// Malformed input must classify as unsupported, not panic or error.
	inputs := []string{
		"://broken",
		"https://",
		"%%%",
		"https://instagram.com/p/",
	}
	for _, raw := range inputs {
		platform, _ := Classify(raw)
		if platform != domain.PlatformUnsupported {
			t.Errorf("Classify(%q) = %q, want unsupported", raw, platform)
		}
	}
}
