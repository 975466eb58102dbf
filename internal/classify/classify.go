// Package classify determines which platform handler applies to a raw URL.
// Classification is pure pattern matching; it never touches the network.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/iconidentify/sharegrab/internal/domain"
)

var (
	instagramPostRe  = regexp.MustCompile(`^/(p|reel|reels|tv)/([A-Za-z0-9_-]+)`)
	instagramStoryRe = regexp.MustCompile(`^/stories/([A-Za-z0-9_.]+)/(\d+)`)
	youtubeShortsRe  = regexp.MustCompile(`^/shorts/([A-Za-z0-9_-]{6,})`)
	youtubeIDRe      = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	tiktokVideoRe    = regexp.MustCompile(`^/@([A-Za-z0-9_.]+)/video/(\d+)`)
	tiktokShortRe    = regexp.MustCompile(`^/[A-Za-z0-9]+/?$`)
	facebookVideoRe  = regexp.MustCompile(`^/(?:[A-Za-z0-9.]+/videos|video\.php|watch)`)
)

// Classify inspects raw text and returns the matching platform plus a
// normalized canonical URL. Ambiguous or malformed input classifies as
// PlatformUnsupported rather than returning an error; the caller decides
// whether to surface a user-facing message.
func Classify(raw string) (domain.PlatformKind, string) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Bare "instagram.com/p/x" style input: retry with a scheme.
		u, err = url.Parse("https://" + raw)
		if err != nil || u.Host == "" {
			return domain.PlatformUnsupported, ""
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.PlatformUnsupported, ""
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "instagram.com", "instagr.am":
		return classifyInstagram(u)
	case "youtube.com", "youtube-nocookie.com":
		return classifyYouTube(u)
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if !youtubeIDRe.MatchString(id) {
			return domain.PlatformUnsupported, ""
		}
		return domain.PlatformYouTube, "https://www.youtube.com/watch?v=" + id
	case "tiktok.com":
		if m := tiktokVideoRe.FindStringSubmatch(u.Path); m != nil {
			return domain.PlatformTikTok, "https://www.tiktok.com/@" + m[1] + "/video/" + m[2]
		}
		return domain.PlatformUnsupported, ""
	case "vm.tiktok.com", "vt.tiktok.com":
		// Short links carry an opaque code; resolution happens at extraction.
		if tiktokShortRe.MatchString(u.Path) && u.Path != "/" {
			return domain.PlatformTikTok, "https://" + u.Hostname() + "/" + strings.Trim(u.Path, "/")
		}
		return domain.PlatformUnsupported, ""
	case "facebook.com":
		if facebookVideoRe.MatchString(u.Path) {
			return domain.PlatformFacebook, canonicalFacebook(u)
		}
		return domain.PlatformUnsupported, ""
	case "fb.watch":
		code := strings.Trim(u.Path, "/")
		if code == "" || strings.Contains(code, "/") {
			return domain.PlatformUnsupported, ""
		}
		return domain.PlatformFacebook, "https://fb.watch/" + code + "/"
	}

	return domain.PlatformUnsupported, ""
}

func classifyInstagram(u *url.URL) (domain.PlatformKind, string) {
	if m := instagramPostRe.FindStringSubmatch(u.Path); m != nil {
		kind := m[1]
		if kind == "reels" {
			kind = "reel"
		}
		return domain.PlatformInstagram, "https://www.instagram.com/" + kind + "/" + m[2] + "/"
	}
	if m := instagramStoryRe.FindStringSubmatch(u.Path); m != nil {
		return domain.PlatformInstagram, "https://www.instagram.com/stories/" + m[1] + "/" + m[2] + "/"
	}
	return domain.PlatformUnsupported, ""
}

func classifyYouTube(u *url.URL) (domain.PlatformKind, string) {
	if strings.HasPrefix(u.Path, "/watch") {
		id := u.Query().Get("v")
		if !youtubeIDRe.MatchString(id) {
			return domain.PlatformUnsupported, ""
		}
		return domain.PlatformYouTube, "https://www.youtube.com/watch?v=" + id
	}
	if m := youtubeShortsRe.FindStringSubmatch(u.Path); m != nil {
		return domain.PlatformYouTube, "https://www.youtube.com/shorts/" + m[1]
	}
	return domain.PlatformUnsupported, ""
}

func canonicalFacebook(u *url.URL) string {
	if v := u.Query().Get("v"); v != "" {
		return "https://www.facebook.com/watch/?v=" + v
	}
	return "https://www.facebook.com" + strings.TrimSuffix(u.Path, "/")
}
