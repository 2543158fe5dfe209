// Copyright (c) 2025 BVK Chaitanya

package price

import "fmt"

// FeedError reports a failed price fetch. Network failures, non-success
// status codes and malformed response bodies are all reported as FeedError.
type FeedError struct {
	// StatusCode is the http status code when a response was received.
	StatusCode int

	Err error
}

func (e *FeedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("price feed: http status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("price feed: %v", e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

func feedErrorf(status int, format string, args ...any) error {
	return &FeedError{StatusCode: status, Err: fmt.Errorf(format, args...)}
}
