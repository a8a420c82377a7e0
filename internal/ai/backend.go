// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package ai abstracts the chat-completion API used by task handlers.
package ai

import (
	"context"
	"fmt"
	"time"
)

// Request is one chat-completion call: a system prompt framing the role and
// a user prompt carrying the task content. MaxTokens overrides the
// configured cap when positive.
type Request struct {
	System    string
	User      string
	MaxTokens int
}

// ChatBackend abstracts the chat-completion API so tests can supply a mock.
type ChatBackend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// BackoffBase controls the base duration for exponential backoff between
// backend attempts. Tests override this to avoid real sleeps.
var BackoffBase = time.Second

// CompleteWithRetry calls the backend with exponential backoff on error.
// HTTP-level 429/5xx retries happen inside the OpenAI client via
// httputil.DoWithRetry; this layer covers transport failures and malformed
// responses.
func CompleteWithRetry(ctx context.Context, backend ChatBackend, req Request, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := BackoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := backend.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
