package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContentCalendarAPI/models"
	"ContentCalendarAPI/utils"
)

// InstagramPublisher publishes through the Instagram Graph API using the
// container flow: media containers are created first, then published.
// One media URL produces a single-image post; several produce a carousel
// built from per-item containers.
type InstagramPublisher struct {
	baseURL     string
	accessToken string
	accountID   string
	client      *http.Client

	// Media URLs are signed before being handed to Instagram, which
	// fetches them without credentials. Signing is skipped when no key
	// is configured (e.g. media already hosted publicly).
	signingKey   []byte
	signedURLTTL time.Duration
}

func NewInstagramPublisher(baseURL, accessToken, accountID string, signingKey []byte, signedURLTTL time.Duration) *InstagramPublisher {
	return &InstagramPublisher{
		baseURL:      strings.TrimRight(baseURL, "/"),
		accessToken:  accessToken,
		accountID:    accountID,
		client:       &http.Client{},
		signingKey:   signingKey,
		signedURLTTL: signedURLTTL,
	}
}

func (p *InstagramPublisher) Publish(ctx context.Context, mediaURLs []string, caption string) models.PublishResult {
	if p.accessToken == "" || p.accountID == "" {
		return p.failure("Instagram credentials are not configured")
	}
	if len(mediaURLs) == 0 {
		return p.failure("No media to publish")
	}

	var creationID string
	var err error
	if len(mediaURLs) == 1 {
		creationID, err = p.createImageContainer(ctx, mediaURLs[0], caption)
	} else {
		creationID, err = p.createCarouselContainer(ctx, mediaURLs, caption)
	}
	if err != nil {
		return p.failure(err.Error())
	}

	externalID, err := p.publishContainer(ctx, creationID)
	if err != nil {
		return p.failure(err.Error())
	}

	return models.PublishResult{
		Platform:   models.Instagram,
		Success:    true,
		Message:    "Published successfully on Instagram",
		ExternalID: externalID,
	}
}

func (p *InstagramPublisher) createImageContainer(ctx context.Context, mediaURL, caption string) (string, error) {
	params := url.Values{}
	params.Set("image_url", p.publicURL(mediaURL))
	params.Set("caption", caption)

	return p.createContainer(ctx, params)
}

func (p *InstagramPublisher) createCarouselContainer(ctx context.Context, mediaURLs []string, caption string) (string, error) {
	children := make([]string, 0, len(mediaURLs))
	for _, mediaURL := range mediaURLs {
		params := url.Values{}
		params.Set("image_url", p.publicURL(mediaURL))
		params.Set("is_carousel_item", "true")

		childID, err := p.createContainer(ctx, params)
		if err != nil {
			return "", err
		}
		children = append(children, childID)
	}

	params := url.Values{}
	params.Set("media_type", "CAROUSEL")
	params.Set("children", strings.Join(children, ","))
	params.Set("caption", caption)

	return p.createContainer(ctx, params)
}

func (p *InstagramPublisher) createContainer(ctx context.Context, params url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media", p.baseURL, p.accountID)

	var response struct {
		ID string `json:"id"`
	}
	if err := p.post(ctx, endpoint, params, &response); err != nil {
		return "", fmt.Errorf("creating media container: %w", err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("creating media container: empty container id in response")
	}
	return response.ID, nil
}

func (p *InstagramPublisher) publishContainer(ctx context.Context, creationID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media_publish", p.baseURL, p.accountID)

	params := url.Values{}
	params.Set("creation_id", creationID)

	var response struct {
		ID string `json:"id"`
	}
	if err := p.post(ctx, endpoint, params, &response); err != nil {
		return "", fmt.Errorf("publishing container %s: %w", creationID, err)
	}
	return response.ID, nil
}

func (p *InstagramPublisher) post(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("access_token", p.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("instagram api error (code %d): %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("instagram api returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *InstagramPublisher) publicURL(mediaURL string) string {
	if len(p.signingKey) == 0 {
		return mediaURL
	}
	return utils.SignURL(mediaURL, p.signingKey, p.signedURLTTL)
}

func (p *InstagramPublisher) failure(message string) models.PublishResult {
	return models.PublishResult{
		Platform: models.Instagram,
		Success:  false,
		Message:  message,
	}
}
