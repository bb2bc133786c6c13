package publishers

import (
	"context"

	"ContentCalendarAPI/models"
)

// Publisher turns a caption plus an ordered list of media URLs into a
// published post on one platform. A single URL becomes a plain post; more
// than one becomes a carousel (or the platform's closest equivalent) —
// that distinction belongs to the publisher, not its callers.
//
// Publish never panics and never returns an error value: all failures,
// including context timeouts, are reported through the result.
type Publisher interface {
	Publish(ctx context.Context, mediaURLs []string, caption string) models.PublishResult
}
