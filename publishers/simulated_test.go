package publishers

import (
	"context"
	"strings"
	"testing"
)

func TestTwitterCaptionLimit(t *testing.T) {
	pub := &TwitterPublisher{}

	result := pub.Publish(context.Background(), []string{"https://cdn.example.com/a.jpg"}, strings.Repeat("x", 281))
	if result.Success {
		t.Error("expected failure for caption over the limit")
	}

	result = pub.Publish(context.Background(), nil, strings.Repeat("x", 280))
	if !result.Success {
		t.Errorf("expected success at the limit, got %q", result.Message)
	}
	if result.ExternalID == "" {
		t.Error("external id not set")
	}
}

func TestFacebookRequiresMedia(t *testing.T) {
	pub := &FacebookPublisher{}

	result := pub.Publish(context.Background(), nil, "caption")
	if result.Success {
		t.Error("expected failure without media")
	}

	result = pub.Publish(context.Background(), []string{"https://cdn.example.com/a.jpg"}, "caption")
	if !result.Success {
		t.Errorf("expected success with media, got %q", result.Message)
	}
}

func TestLinkedInRequiresCaption(t *testing.T) {
	pub := &LinkedInPublisher{}

	result := pub.Publish(context.Background(), []string{"https://cdn.example.com/a.jpg"}, "")
	if result.Success {
		t.Error("expected failure without caption")
	}
}

func TestSimulatedPublisherHonorsCancellation(t *testing.T) {
	pub := &FacebookPublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := pub.Publish(ctx, []string{"https://cdn.example.com/a.jpg"}, "caption")
	if result.Success {
		t.Error("expected failure for cancelled context")
	}
	if !strings.Contains(result.Message, "context canceled") {
		t.Errorf("message = %q, want context cancellation", result.Message)
	}
}
