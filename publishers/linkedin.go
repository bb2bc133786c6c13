package publishers

import (
	"context"
	"fmt"
	"time"

	"ContentCalendarAPI/models"

	"github.com/google/uuid"
)

// LinkedInPublisher simulates publishing to LinkedIn.
type LinkedInPublisher struct{}

func (l *LinkedInPublisher) Publish(ctx context.Context, mediaURLs []string, caption string) models.PublishResult {
	if err := simulateLatency(ctx, 700*time.Millisecond); err != nil {
		return models.PublishResult{
			Platform: models.LinkedIn,
			Success:  false,
			Message:  err.Error(),
		}
	}

	if caption == "" {
		return models.PublishResult{
			Platform: models.LinkedIn,
			Success:  false,
			Message:  "LinkedIn posts require a caption",
		}
	}

	return models.PublishResult{
		Platform:   models.LinkedIn,
		Success:    true,
		Message:    "Published successfully on LinkedIn",
		ExternalID: fmt.Sprintf("li_%s", uuid.New().String()[:8]),
	}
}
