package llm

import (
	"net/http"
	"strings"
)

// reply is what a provider answered, before it is checked for usable
// feedback text.
type reply struct {
	text   string
	stop   StopReason
	reason string
	model  string
	usage  Usage
}

// accept turns a reply into a Response. Truncated, blocked and blank replies
// are errors: feedback is shown whole or not at all.
func accept(r reply) (*Response, error) {
	switch r.stop {
	case StopBlocked:
		return nil, &ErrBlocked{Reason: r.reason}
	case StopMaxTokens:
		return nil, &ErrMaxTokensExceeded{Text: r.text}
	}
	if strings.TrimSpace(r.text) == "" {
		return nil, &ErrEmptyResponse{Model: r.model}
	}
	return &Response{Text: r.text, Usage: r.usage, Model: r.model, StopReason: StopEnd}, nil
}

// classifyStatus sorts a failed call by the HTTP status the SDK reported.
// Zero means the status is unknown.
func classifyStatus(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

func tokenUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
