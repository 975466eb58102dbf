package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/sharegrab/internal/domain"
)

func newYouTubeServer(t *testing.T, wantVideoID string, respond func(w http.ResponseWriter)) *YouTube {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/youtubei/v1/player" {
			t.Errorf("path = %q, want /youtubei/v1/player", r.URL.Path)
		}

		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.VideoID != wantVideoID {
			t.Errorf("videoId = %q, want %q", req.VideoID, wantVideoID)
		}
		if req.Context.Client.ClientName != "ANDROID" {
			t.Errorf("clientName = %q, want ANDROID", req.Context.Client.ClientName)
		}

		respond(w)
	}))
	t.Cleanup(server.Close)

	return NewYouTube(extractConfig(server.URL), server.Client())
}

func TestYouTube_PicksBestProgressiveFormat(t *testing.T) {
	e := newYouTubeServer(t, "dQw4w9WgXcQ", func(w http.ResponseWriter) {
		w.Write([]byte(`{
			"playabilityStatus": {"status": "OK"},
			"videoDetails": {"title": "Test Video"},
			"streamingData": {
				"formats": [
					{"url": "https://cdn.example/360.mp4", "mimeType": "video/mp4", "bitrate": 500000, "contentLength": "1000000"},
					{"url": "https://cdn.example/720.mp4", "mimeType": "video/mp4", "bitrate": 1500000, "contentLength": "3000000"},
					{"url": "https://cdn.example/audio.m4a", "mimeType": "audio/mp4", "bitrate": 9000000, "contentLength": "500000"},
					{"url": "", "mimeType": "video/mp4", "bitrate": 9999999, "contentLength": "9"}
				]
			}
		}`))
	})

	descriptors, err := e.Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(descriptors) != 1 {
		t.Fatalf("descriptors = %d, want 1", len(descriptors))
	}

	d := descriptors[0]
	if d.SourceURL != "https://cdn.example/720.mp4" {
		t.Errorf("SourceURL = %q, want the highest-bitrate muxed format", d.SourceURL)
	}
	if d.Kind != domain.MediaVideo {
		t.Errorf("Kind = %q, want video", d.Kind)
	}
	if d.EstimatedSize != 3000000 {
		t.Errorf("EstimatedSize = %d, want 3000000", d.EstimatedSize)
	}
	if d.Caption != "Test Video" {
		t.Errorf("Caption = %q, want %q", d.Caption, "Test Video")
	}
}

func TestYouTube_ShortsURL(t *testing.T) {
	e := newYouTubeServer(t, "abcDEF12345", func(w http.ResponseWriter) {
		w.Write([]byte(`{
			"playabilityStatus": {"status": "OK"},
			"streamingData": {"formats": [
				{"url": "https://cdn.example/short.mp4", "mimeType": "video/mp4", "bitrate": 100}
			]}
		}`))
	})

	descriptors, err := e.Extract(context.Background(), "https://www.youtube.com/shorts/abcDEF12345")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if descriptors[0].Kind != domain.MediaVideo {
		t.Errorf("Kind = %q, shorts must classify as video", descriptors[0].Kind)
	}
}

func TestYouTube_LoginRequired(t *testing.T) {
	e := newYouTubeServer(t, "privateVid1", func(w http.ResponseWriter) {
		w.Write([]byte(`{"playabilityStatus": {"status": "LOGIN_REQUIRED"}}`))
	})

	_, err := e.Extract(context.Background(), "https://www.youtube.com/watch?v=privateVid1")
	if !errors.Is(err, domain.ErrPrivateContent) {
		t.Errorf("Extract() error = %v, want ErrPrivateContent", err)
	}
}

func TestYouTube_Unplayable(t *testing.T) {
	e := newYouTubeServer(t, "removedVid1", func(w http.ResponseWriter) {
		w.Write([]byte(`{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`))
	})

	_, err := e.Extract(context.Background(), "https://www.youtube.com/watch?v=removedVid1")
	if !errors.Is(err, domain.ErrContentRemoved) {
		t.Errorf("Extract() error = %v, want ErrContentRemoved", err)
	}
}

func TestYouTube_NoProgressiveFormats(t *testing.T) {
	e := newYouTubeServer(t, "audioOnly12", func(w http.ResponseWriter) {
		w.Write([]byte(`{
			"playabilityStatus": {"status": "OK"},
			"streamingData": {"formats": [
				{"url": "https://cdn.example/a.m4a", "mimeType": "audio/mp4", "bitrate": 128000}
			]}
		}`))
	})

	_, err := e.Extract(context.Background(), "https://www.youtube.com/watch?v=audioOnly12")
	if !errors.Is(err, domain.ErrNoMedia) {
		t.Errorf("Extract() error = %v, want ErrNoMedia", err)
	}
}

func TestYouTubeVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/shorts/abcDEF12345", "abcDEF12345", false},
		{"https://www.youtube.com/watch", "", true},
	}

	for _, tt := range tests {
		got, err := youtubeVideoID(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("youtubeVideoID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("youtubeVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
