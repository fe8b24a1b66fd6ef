package status

import "errors"

var (
	ErrMissingAPIKey    = errors.New("config: EVENTBRITE_API_KEY is not set")
	ErrAuthFailed       = errors.New("eventbrite: authentication failed")
	ErrRateLimited      = errors.New("eventbrite: rate limited")
	ErrRetriesExhausted = errors.New("eventbrite: retries exhausted")
	ErrMalformedReply   = errors.New("eventbrite: malformed response")
	ErrUnknownTemplate  = errors.New("render: unknown template")
)
