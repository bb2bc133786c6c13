package services

import (
	"ContentCalendarAPI/config"
	"ContentCalendarAPI/models"
	"ContentCalendarAPI/publishers"
)

// PublisherRegistry maps each platform of the closed set to its publisher.
type PublisherRegistry struct {
	publishers map[models.Platform]publishers.Publisher
}

func NewPublisherRegistry(cfg *config.Config) *PublisherRegistry {
	return &PublisherRegistry{
		publishers: map[models.Platform]publishers.Publisher{
			models.Instagram: publishers.NewInstagramPublisher(
				cfg.InstagramGraphBaseURL,
				cfg.InstagramAccessToken,
				cfg.InstagramBusinessAccountID,
				cfg.URLSigningKey,
				cfg.SignedURLTTL,
			),
			models.Facebook: &publishers.FacebookPublisher{},
			models.Twitter:  &publishers.TwitterPublisher{},
			models.LinkedIn: &publishers.LinkedInPublisher{},
		},
	}
}

func (r *PublisherRegistry) For(platform models.Platform) (publishers.Publisher, bool) {
	publisher, ok := r.publishers[platform]
	return publisher, ok
}
