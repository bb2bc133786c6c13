package publishers

import (
	"context"
	"fmt"
	"time"

	"ContentCalendarAPI/models"

	"github.com/google/uuid"
)

const twitterCaptionLimit = 280

// TwitterPublisher simulates publishing to Twitter/X.
type TwitterPublisher struct{}

func (t *TwitterPublisher) Publish(ctx context.Context, mediaURLs []string, caption string) models.PublishResult {
	if err := simulateLatency(ctx, 500*time.Millisecond); err != nil {
		return models.PublishResult{
			Platform: models.Twitter,
			Success:  false,
			Message:  err.Error(),
		}
	}

	if len(caption) > twitterCaptionLimit {
		return models.PublishResult{
			Platform: models.Twitter,
			Success:  false,
			Message:  fmt.Sprintf("Caption exceeds %d characters", twitterCaptionLimit),
		}
	}

	return models.PublishResult{
		Platform:   models.Twitter,
		Success:    true,
		Message:    "Published successfully on Twitter",
		ExternalID: fmt.Sprintf("tw_%s", uuid.New().String()[:8]),
	}
}
