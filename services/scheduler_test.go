package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"ContentCalendarAPI/models"
	"ContentCalendarAPI/publishers"

	"github.com/google/uuid"
)

type fakeStore struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newFakeStore(posts ...*models.Post) *fakeStore {
	s := &fakeStore{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		cp := *p
		s.posts[p.ID] = &cp
	}
	return s
}

func (s *fakeStore) GetPost(id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s not found", id)
	}
	cp := *post
	return &cp, nil
}

func (s *fakeStore) CreatePost(post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *fakeStore) UpdatePostFields(id string, fields models.PostUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("post %s not found", id)
	}
	if fields.Status != nil {
		post.Status = *fields.Status
	}
	if fields.ScheduledAt != nil {
		post.ScheduledAt = fields.ScheduledAt
	}
	if fields.PublishedAt != nil {
		post.PublishedAt = fields.PublishedAt
	}
	if fields.AutoPublish != nil {
		post.AutoPublish = *fields.AutoPublish
	}
	if fields.ExternalPostID != nil {
		post.ExternalPostID = *fields.ExternalPostID
	}
	if fields.ErrorMessage != nil {
		post.ErrorMessage = *fields.ErrorMessage
	}
	if fields.FailedAt != nil {
		post.FailedAt = fields.FailedAt
	}
	return nil
}

func (s *fakeStore) GetDuePosts(now time.Time) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*models.Post
	for _, post := range s.posts {
		if post.Status == models.StatusScheduled && post.AutoPublish &&
			post.ScheduledAt != nil && !post.ScheduledAt.After(now) {
			cp := *post
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (s *fakeStore) GetScheduledAfter(now time.Time) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var upcoming []*models.Post
	for _, post := range s.posts {
		if post.Status == models.StatusScheduled && post.AutoPublish &&
			post.ScheduledAt != nil && post.ScheduledAt.After(now) {
			cp := *post
			upcoming = append(upcoming, &cp)
		}
	}
	return upcoming, nil
}

func (s *fakeStore) GetUpcomingPosts(now time.Time, limit int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var upcoming []*models.Post
	for _, post := range s.posts {
		if post.Status == models.StatusScheduled &&
			post.ScheduledAt != nil && post.ScheduledAt.After(now) {
			cp := *post
			upcoming = append(upcoming, &cp)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledAt.Before(*upcoming[j].ScheduledAt)
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

// successors returns the posts the scheduler created beyond the initial set.
func (s *fakeStore) successors(initial ...string) []*models.Post {
	seen := make(map[string]bool, len(initial))
	for _, id := range initial {
		seen[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var created []*models.Post
	for id, post := range s.posts {
		if !seen[id] {
			cp := *post
			created = append(created, &cp)
		}
	}
	return created
}

type publishCall struct {
	mediaURLs []string
	caption   string
}

type fakePublisher struct {
	mu      sync.Mutex
	calls   []publishCall
	publish func(ctx context.Context, mediaURLs []string, caption string) models.PublishResult
}

func (p *fakePublisher) Publish(ctx context.Context, mediaURLs []string, caption string) models.PublishResult {
	p.mu.Lock()
	p.calls = append(p.calls, publishCall{mediaURLs: mediaURLs, caption: caption})
	p.mu.Unlock()

	if p.publish != nil {
		return p.publish(ctx, mediaURLs, caption)
	}
	return models.PublishResult{Success: true, ExternalID: "ext_" + uuid.New().String()[:8]}
}

func (p *fakePublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type fakeResolver struct {
	publishers map[models.Platform]publishers.Publisher
}

func (r *fakeResolver) For(platform models.Platform) (publishers.Publisher, bool) {
	p, ok := r.publishers[platform]
	return p, ok
}

func resolverFor(platform models.Platform, p publishers.Publisher) *fakeResolver {
	return &fakeResolver{publishers: map[models.Platform]publishers.Publisher{platform: p}}
}

func scheduledPost(scheduledAt time.Time) *models.Post {
	now := time.Now()
	return &models.Post{
		ID:          uuid.New().String(),
		UserID:      uuid.New().String(),
		Title:       "Launch",
		Content:     "We shipped it",
		Platform:    models.Instagram,
		PostType:    models.PostTypeFeed,
		Hashtags:    []string{"launch"},
		MediaURLs:   []string{"https://cdn.example.com/a.jpg"},
		Status:      models.StatusScheduled,
		ScheduledAt: &scheduledAt,
		AutoPublish: true,
		PublishMode: models.PublishModeScheduled,
		Recurrence:  models.Recurrence{Type: models.RecurrenceNone, Interval: 1},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPublishPostSuccess(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	store := newFakeStore(post)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusPublished {
		t.Errorf("status = %s, want %s", got.Status, models.StatusPublished)
	}
	if got.PublishedAt == nil {
		t.Error("published_at not set")
	}
	if got.ExternalPostID == "" {
		t.Error("external post id not set")
	}

	if n := pub.callCount(); n != 1 {
		t.Fatalf("publisher called %d times, want 1", n)
	}
	wantCaption := "Launch\n\nWe shipped it\n\n#launch"
	if pub.calls[0].caption != wantCaption {
		t.Errorf("caption = %q, want %q", pub.calls[0].caption, wantCaption)
	}
}

func TestPublishPostIsIdempotent(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	store := newFakeStore(post)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		if err := s.PublishPost(post.ID); err != nil {
			t.Fatalf("PublishPost() attempt %d error = %v", i+1, err)
		}
	}

	if n := pub.callCount(); n != 1 {
		t.Errorf("publisher called %d times, want 1", n)
	}
}

func TestPublishPostWithoutMediaFails(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	post.MediaURLs = nil
	store := newFakeStore(post)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusFailed {
		t.Errorf("status = %s, want %s", got.Status, models.StatusFailed)
	}
	if got.ErrorMessage != errNoMediaMessage {
		t.Errorf("error message = %q, want %q", got.ErrorMessage, errNoMediaMessage)
	}
	if got.FailedAt == nil {
		t.Error("failed_at not set")
	}
	if n := pub.callCount(); n != 0 {
		t.Errorf("publisher called %d times, want 0", n)
	}
}

func TestPublishPostUnknownPlatformFails(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	post.Platform = models.Twitter
	store := newFakeStore(post)
	s := NewScheduler(store, resolverFor(models.Instagram, &fakePublisher{}), time.Minute, time.Minute)

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusFailed {
		t.Errorf("status = %s, want %s", got.Status, models.StatusFailed)
	}
	if got.ErrorMessage == "" {
		t.Error("error message not set")
	}
}

func TestPublishPostPublisherFailure(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	store := newFakeStore(post)
	pub := &fakePublisher{
		publish: func(ctx context.Context, mediaURLs []string, caption string) models.PublishResult {
			return models.PublishResult{Success: false, Message: "rate limited"}
		},
	}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusFailed {
		t.Errorf("status = %s, want %s", got.Status, models.StatusFailed)
	}
	if got.ErrorMessage != "rate limited" {
		t.Errorf("error message = %q, want %q", got.ErrorMessage, "rate limited")
	}
	if got.ExternalPostID != "" {
		t.Errorf("external post id = %q, want empty", got.ExternalPostID)
	}
}

func TestPublishPostRespectsAutoPublish(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	post.AutoPublish = false
	store := newFakeStore(post)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusScheduled {
		t.Errorf("status = %s, want %s", got.Status, models.StatusScheduled)
	}
	if n := pub.callCount(); n != 0 {
		t.Errorf("publisher called %d times, want 0", n)
	}
}

func TestPublishPostCreatesNextOccurrence(t *testing.T) {
	due := time.Now().Add(-time.Minute).Truncate(time.Second)
	post := scheduledPost(due)
	post.PublishMode = models.PublishModeRecurring
	post.Recurrence = models.Recurrence{Type: models.RecurrenceDaily, Interval: 2}
	store := newFakeStore(post)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)
	defer s.Stop()

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	created := store.successors(post.ID)
	if len(created) != 1 {
		t.Fatalf("created %d successor posts, want 1", len(created))
	}

	next := created[0]
	wantAt := due.AddDate(0, 0, 2)
	if next.ScheduledAt == nil || !next.ScheduledAt.Equal(wantAt) {
		t.Errorf("successor scheduled_at = %v, want %v", next.ScheduledAt, wantAt)
	}
	if next.Status != models.StatusScheduled {
		t.Errorf("successor status = %s, want %s", next.Status, models.StatusScheduled)
	}
	if next.ID == post.ID {
		t.Error("successor reuses original id")
	}
	if next.Title != post.Title || next.Content != post.Content {
		t.Error("successor content differs from original")
	}
	if next.ExternalPostID != "" || next.ErrorMessage != "" || next.PublishedAt != nil || next.FailedAt != nil {
		t.Error("successor inherited publish-result fields")
	}

	armed := s.ListArmedPosts()
	if len(armed) != 1 || armed[0] != next.ID {
		t.Errorf("armed posts = %v, want [%s]", armed, next.ID)
	}
}

func TestRecurrenceStopsAtEndDate(t *testing.T) {
	due := time.Now().Add(-time.Minute)
	endDate := due.AddDate(0, 0, 1)
	post := scheduledPost(due)
	post.PublishMode = models.PublishModeRecurring
	post.Recurrence = models.Recurrence{
		Type:     models.RecurrenceDaily,
		Interval: 2,
		EndDate:  &endDate,
	}
	store := newFakeStore(post)
	s := NewScheduler(store, resolverFor(models.Instagram, &fakePublisher{}), time.Minute, time.Minute)

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusPublished {
		t.Errorf("status = %s, want %s", got.Status, models.StatusPublished)
	}
	if created := store.successors(post.ID); len(created) != 0 {
		t.Errorf("created %d successor posts, want 0", len(created))
	}
}

func TestSweepPublishesOverduePosts(t *testing.T) {
	overdue := scheduledPost(time.Now().Add(-time.Hour))
	future := scheduledPost(time.Now().Add(time.Hour))
	store := newFakeStore(overdue, future)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	s.Sweep()

	got, _ := store.GetPost(overdue.ID)
	if got.Status != models.StatusPublished {
		t.Errorf("overdue post status = %s, want %s", got.Status, models.StatusPublished)
	}
	untouched, _ := store.GetPost(future.ID)
	if untouched.Status != models.StatusScheduled {
		t.Errorf("future post status = %s, want %s", untouched.Status, models.StatusScheduled)
	}
	if n := pub.callCount(); n != 1 {
		t.Errorf("publisher called %d times, want 1", n)
	}
}

func TestSweepIsolatesFailures(t *testing.T) {
	a := scheduledPost(time.Now().Add(-time.Hour))
	b := scheduledPost(time.Now().Add(-time.Hour))
	b.MediaURLs = []string{"https://cdn.example.com/broken.jpg"}
	c := scheduledPost(time.Now().Add(-time.Hour))
	store := newFakeStore(a, b, c)

	// Fail exactly one post; the others must still publish.
	pub := &fakePublisher{
		publish: func(ctx context.Context, mediaURLs []string, caption string) models.PublishResult {
			if mediaURLs[0] == b.MediaURLs[0] {
				return models.PublishResult{Success: false, Message: "platform rejected post"}
			}
			return models.PublishResult{Success: true, ExternalID: "ext_ok"}
		},
	}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	s.Sweep()

	for _, post := range []*models.Post{a, c} {
		got, _ := store.GetPost(post.ID)
		if got.Status != models.StatusPublished {
			t.Errorf("post %s status = %s, want %s", post.ID, got.Status, models.StatusPublished)
		}
	}
	failed, _ := store.GetPost(b.ID)
	if failed.Status != models.StatusFailed {
		t.Errorf("failing post status = %s, want %s", failed.Status, models.StatusFailed)
	}
	if n := pub.callCount(); n != 3 {
		t.Errorf("publisher called %d times, want 3", n)
	}
}

func TestTimerFiresAndPublishes(t *testing.T) {
	post := scheduledPost(time.Now().Add(30 * time.Millisecond))
	store := newFakeStore(post)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)
	defer s.Stop()

	if err := s.SchedulePost(post); err != nil {
		t.Fatalf("SchedulePost() error = %v", err)
	}
	if armed := s.ListArmedPosts(); len(armed) != 1 {
		t.Fatalf("armed posts = %v, want one entry", armed)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := store.GetPost(post.ID)
		if got.Status == models.StatusPublished {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("post not published before deadline, status = %s", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if armed := s.ListArmedPosts(); len(armed) != 0 {
		t.Errorf("armed posts after fire = %v, want none", armed)
	}
}

func TestSchedulePostRequiresScheduledTime(t *testing.T) {
	post := scheduledPost(time.Now())
	post.ScheduledAt = nil
	s := NewScheduler(newFakeStore(post), resolverFor(models.Instagram, &fakePublisher{}), time.Minute, time.Minute)

	if err := s.SchedulePost(post); err == nil {
		t.Fatal("SchedulePost() error = nil, want error for missing scheduled time")
	}
}

func TestCancelRevertsToDraft(t *testing.T) {
	post := scheduledPost(time.Now().Add(time.Hour))
	store := newFakeStore(post)
	s := NewScheduler(store, resolverFor(models.Instagram, &fakePublisher{}), time.Minute, time.Minute)
	defer s.Stop()

	if err := s.SchedulePost(post); err != nil {
		t.Fatalf("SchedulePost() error = %v", err)
	}
	if err := s.Cancel(post.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusDraft {
		t.Errorf("status = %s, want %s", got.Status, models.StatusDraft)
	}
	if got.AutoPublish {
		t.Error("auto_publish still enabled after cancel")
	}
	if armed := s.ListArmedPosts(); len(armed) != 0 {
		t.Errorf("armed posts after cancel = %v, want none", armed)
	}
}

func TestCancelAfterPublishIsNoOp(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	store := newFakeStore(post)
	s := NewScheduler(store, resolverFor(models.Instagram, &fakePublisher{}), time.Minute, time.Minute)

	if err := s.PublishPost(post.ID); err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}
	if err := s.Cancel(post.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusPublished {
		t.Errorf("status = %s, want %s", got.Status, models.StatusPublished)
	}
}

func TestInitializeArmsScheduledPosts(t *testing.T) {
	future := scheduledPost(time.Now().Add(time.Hour))
	past := scheduledPost(time.Now().Add(-time.Hour))
	store := newFakeStore(future, past)
	s := NewScheduler(store, resolverFor(models.Instagram, &fakePublisher{}), time.Hour, time.Minute)
	defer s.Stop()

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	// Second call must not double-arm or restart the sweep.
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() second call error = %v", err)
	}

	armed := s.ListArmedPosts()
	if len(armed) != 1 || armed[0] != future.ID {
		t.Errorf("armed posts = %v, want [%s]", armed, future.ID)
	}
}

func TestGetUpcomingPostsOrdersAndLimits(t *testing.T) {
	now := time.Now()
	first := scheduledPost(now.Add(time.Hour))
	second := scheduledPost(now.Add(2 * time.Hour))
	third := scheduledPost(now.Add(3 * time.Hour))
	store := newFakeStore(second, third, first)
	s := NewScheduler(store, resolverFor(models.Instagram, &fakePublisher{}), time.Minute, time.Minute)

	upcoming, err := s.GetUpcomingPosts(2)
	if err != nil {
		t.Fatalf("GetUpcomingPosts() error = %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("got %d posts, want 2", len(upcoming))
	}
	if upcoming[0].ID != first.ID || upcoming[1].ID != second.ID {
		t.Errorf("order = [%s %s], want [%s %s]", upcoming[0].ID, upcoming[1].ID, first.ID, second.ID)
	}
}

func TestConcurrentPublishAttemptsPublishOnce(t *testing.T) {
	post := scheduledPost(time.Now().Add(-time.Minute))
	store := newFakeStore(post)
	pub := &fakePublisher{}
	s := NewScheduler(store, resolverFor(models.Instagram, pub), time.Minute, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.PublishPost(post.ID); err != nil {
				t.Errorf("PublishPost() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := pub.callCount(); n != 1 {
		t.Errorf("publisher called %d times, want 1", n)
	}
	got, _ := store.GetPost(post.ID)
	if got.Status != models.StatusPublished {
		t.Errorf("status = %s, want %s", got.Status, models.StatusPublished)
	}
}
