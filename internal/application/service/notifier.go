package service

import "context"

// CompletionNotifier reports a newly completed survey to the external
// completion handler. The handler is idempotent by contract, so
// repeated delivery for the same user is safe.
type CompletionNotifier interface {
	NotifyCompleted(ctx context.Context, userID string) error
}
