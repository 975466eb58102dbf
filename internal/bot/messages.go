package bot

import (
	"errors"
	"fmt"

	"github.com/iconidentify/sharegrab/internal/domain"
)

// Each outcome reason maps to its own specific message; a generic
// "something went wrong" reply is treated as a bug.
func messageFor(outcome domain.Outcome, ceiling int64) string {
	switch outcome.Status {
	case domain.StatusDelivered:
		msg := fmt.Sprintf("✅ Sent %d item(s) from %s (%.1f MB).",
			outcome.Assets,
			outcome.Platform.DisplayName(),
			float64(outcome.BytesSent)/(1024*1024),
		)
		if outcome.Skipped > 0 {
			msg += fmt.Sprintf("\n%d item(s) were skipped because they exceed the %d MB limit.",
				outcome.Skipped, ceiling/(1024*1024))
		}
		return msg

	case domain.StatusRejected:
		switch outcome.Reject {
		case domain.RejectUnsupportedPlatform:
			return "❌ I can only download from Instagram, YouTube, TikTok, and Facebook.\n\nSend /help to see examples."
		case domain.RejectPrivateContent:
			return "🔒 That content is private. I can only fetch publicly accessible posts."
		case domain.RejectOversized:
			return fmt.Sprintf("📦 That file is too large to send here (limit %d MB).", ceiling/(1024*1024))
		case domain.RejectNoMediaFound:
			return "🔍 Couldn't find media at that link. Check that it's correct and still available."
		}

	case domain.StatusFailed:
		switch outcome.Fail {
		case domain.FailNetwork:
			return "🌐 Network problem while fetching that link. Please try again."
		case domain.FailTimeout:
			return "⏱ That took too long and timed out. Please try again."
		case domain.FailExtraction:
			return "⚠️ Couldn't read that page. The link may be malformed, or the site changed its format."
		}
	}

	// Unreachable for well-formed outcomes; kept so a new reason code
	// fails loudly in review rather than silently.
	return fmt.Sprintf("Request finished with status %s.", outcome.Status)
}

func captionErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyTopic):
		return "Please provide a topic!\n\nExample: /caption sunset beach photo"
	case errors.Is(err, domain.ErrTopicTooLong):
		return "✂️ That topic is too long. Please keep it under 200 characters."
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "🤖 The AI service is busy right now. Try again in a minute."
	case errors.Is(err, domain.ErrInvalidAPIKey):
		return "🔧 AI features are not configured. Ask the operator to set GEMINI_API_KEY."
	default:
		return "⚠️ The AI service returned an error. Please try again later."
	}
}

const welcomeMessage = `👋 Welcome!

I can download content from Instagram, YouTube, TikTok, and Facebook, and generate captions & hashtags with AI.

How to use:
1. Send me a link from a supported platform
2. Use /caption <topic> for an AI caption
3. Use /hashtags <topic> for hashtag suggestions

Commands:
/start - Show this message
/help - Detailed help
/caption - Generate a caption
/hashtags - Get hashtag suggestions
/stats - Usage statistics`

const helpMessage = `📖 How to use this bot:

Download content: just send a link from:
• Instagram (posts, carousels, reels, stories)
• YouTube (videos, shorts)
• TikTok (videos)
• Facebook (videos)

Generate captions:
/caption <your topic>
Example: /caption sunset beach photo

Get hashtags:
/hashtags <your topic>
Example: /hashtags fitness motivation

Supported links:
✅ instagram.com/p/xxxxx
✅ instagram.com/reel/xxxxx
✅ youtube.com/watch?v=xxxxx
✅ youtu.be/xxxxx
✅ tiktok.com/@user/video/xxxxx
✅ facebook.com/watch?v=xxxxx

Tips:
• Send links one at a time
• Downloads may take 30-60 seconds
• Files over the size limit (about 50 MB) cannot be sent`
