package domain

// OutcomeStatus is the terminal disposition of a link request.
type OutcomeStatus string

const (
	StatusDelivered OutcomeStatus = "delivered"
	StatusRejected  OutcomeStatus = "rejected"
	StatusFailed    OutcomeStatus = "failed"
)

// RejectReason explains a policy rejection. Rejections are never retried.
type RejectReason string

const (
	RejectUnsupportedPlatform RejectReason = "unsupported-platform"
	RejectPrivateContent      RejectReason = "private-content"
	RejectOversized           RejectReason = "oversized"
	RejectNoMediaFound        RejectReason = "no-media-found"
)

// FailReason explains an operational failure after any retry was exhausted.
type FailReason string

const (
	FailNetwork    FailReason = "network"
	FailExtraction FailReason = "extraction-error"
	FailTimeout    FailReason = "timeout"
)

// Outcome is the single terminal result reported for one LinkRequest.
type Outcome struct {
	Status    OutcomeStatus
	Reject    RejectReason // set when Status == StatusRejected
	Fail      FailReason   // set when Status == StatusFailed
	Platform  PlatformKind
	Assets    int   // items delivered
	BytesSent int64 // total bytes handed to the transport
	Skipped   int   // items over the ceiling, skipped rather than failed
}

// Delivered builds a successful outcome.
func Delivered(platform PlatformKind, assets int, bytes int64, skipped int) Outcome {
	return Outcome{
		Status:    StatusDelivered,
		Platform:  platform,
		Assets:    assets,
		BytesSent: bytes,
		Skipped:   skipped,
	}
}

// Rejected builds a policy-rejection outcome.
func Rejected(platform PlatformKind, reason RejectReason) Outcome {
	return Outcome{
		Status:   StatusRejected,
		Platform: platform,
		Reject:   reason,
	}
}

// Failed builds an operational-failure outcome.
func Failed(platform PlatformKind, reason FailReason) Outcome {
	return Outcome{
		Status:   StatusFailed,
		Platform: platform,
		Fail:     reason,
	}
}

// Reason returns the reject or fail reason code as a string, empty for
// delivered outcomes. Used by the history journal.
func (o Outcome) Reason() string {
	switch o.Status {
	case StatusRejected:
		return string(o.Reject)
	case StatusFailed:
		return string(o.Fail)
	default:
		return ""
	}
}
