package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/sharegrab/internal/domain"
)

func newTikTokServer(t *testing.T, page string) *TikTok {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)

	return NewTikTok(extractConfig(server.URL), server.Client(), &stubProber{size: 2048})
}

func TestTikTok_ExtractsPlayAddress(t *testing.T) {
	page := `<html><script>{"video":{"playAddr":"https:\/\/v16.tiktokcdn.example\/video.mp4?tk=1","desc":"dance ✨ clip"},"statusCode":0}</script></html>`
	e := newTikTokServer(t, page)

	descriptors, err := e.Extract(context.Background(), "https://www.tiktok.com/@some.user/video/7123456789")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(descriptors) != 1 {
		t.Fatalf("descriptors = %d, want 1", len(descriptors))
	}

	d := descriptors[0]
	if d.SourceURL != "https://v16.tiktokcdn.example/video.mp4?tk=1" {
		t.Errorf("SourceURL = %q, escaped slashes should decode", d.SourceURL)
	}
	if d.Kind != domain.MediaVideo {
		t.Errorf("Kind = %q, want video", d.Kind)
	}
	if d.Caption != "dance ✨ clip" {
		t.Errorf("Caption = %q, unicode escapes should decode", d.Caption)
	}
	if d.EstimatedSize != 2048 {
		t.Errorf("EstimatedSize = %d, want the probed size 2048", d.EstimatedSize)
	}
}

func TestTikTok_PrivateItem(t *testing.T) {
	e := newTikTokServer(t, `{"video":{"playAddr":"https:\/\/x"},"privateItem":true}`)

	_, err := e.Extract(context.Background(), "https://www.tiktok.com/@u/video/1")
	if !errors.Is(err, domain.ErrPrivateContent) {
		t.Errorf("Extract() error = %v, want ErrPrivateContent", err)
	}
}

func TestTikTok_RemovedVideo(t *testing.T) {
	e := newTikTokServer(t, `{"statusCode":10204}`)

	_, err := e.Extract(context.Background(), "https://www.tiktok.com/@u/video/1")
	if !errors.Is(err, domain.ErrContentRemoved) {
		t.Errorf("Extract() error = %v, want ErrContentRemoved", err)
	}
}

func TestTikTok_NoPlayAddress(t *testing.T) {
	e := newTikTokServer(t, `<html>nothing useful here</html>`)

	_, err := e.Extract(context.Background(), "https://www.tiktok.com/@u/video/1")
	if !errors.Is(err, domain.ErrNoMedia) {
		t.Errorf("Extract() error = %v, want ErrNoMedia", err)
	}
}

func TestUnescapeJSONString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`https:\/\/cdn.example\/v.mp4`, "https://cdn.example/v.mp4"},
		{`plain`, "plain"},
		{`line\nbreak`, "line\nbreak"},
		{`emoji ✨`, "emoji ✨"},
	}

	for _, tt := range tests {
		got, err := unescapeJSONString(tt.in)
		if err != nil {
			t.Errorf("unescapeJSONString(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("unescapeJSONString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
