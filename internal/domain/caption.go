package domain

// CaptionRequest is a user-triggered request for AI-generated copy.
type CaptionRequest struct {
	Topic string
}

// CaptionResult is the generated caption and hashtag set for a topic.
type CaptionResult struct {
	Caption  string
	Hashtags []string
}
