package publishers

import (
	"context"
	"fmt"
	"time"

	"ContentCalendarAPI/models"

	"github.com/google/uuid"
)

// FacebookPublisher simulates publishing to Facebook. Only the Instagram
// integration is live; the remaining platforms of the closed set keep the
// engine exercised end to end until their Graph API flows are wired up.
type FacebookPublisher struct{}

func (f *FacebookPublisher) Publish(ctx context.Context, mediaURLs []string, caption string) models.PublishResult {
	if err := simulateLatency(ctx, 600*time.Millisecond); err != nil {
		return models.PublishResult{
			Platform: models.Facebook,
			Success:  false,
			Message:  err.Error(),
		}
	}

	if len(mediaURLs) == 0 {
		return models.PublishResult{
			Platform: models.Facebook,
			Success:  false,
			Message:  "Facebook requires at least one media attachment",
		}
	}

	return models.PublishResult{
		Platform:   models.Facebook,
		Success:    true,
		Message:    "Published successfully on Facebook",
		ExternalID: fmt.Sprintf("fb_%s", uuid.New().String()[:8]),
	}
}

// simulateLatency sleeps for d or until the context is cancelled.
func simulateLatency(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
