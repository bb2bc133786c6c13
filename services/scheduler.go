package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ContentCalendarAPI/models"
	"ContentCalendarAPI/publishers"
	"ContentCalendarAPI/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// errNoMediaMessage is recorded on a post that reaches publish time
// without any media attached. Publishing requires at least one media URL.
const errNoMediaMessage = "post must have at least one media attachment"

// PostStore is the persistence contract the scheduler depends on.
// The engine never caches post state: it re-reads a post immediately
// before mutating it, and writes through partial updates.
type PostStore interface {
	GetPost(id string) (*models.Post, error)
	CreatePost(post *models.Post) error
	UpdatePostFields(id string, fields models.PostUpdate) error

	// GetDuePosts returns scheduled, auto-publish posts due at or before now.
	GetDuePosts(now time.Time) ([]*models.Post, error)
	// GetScheduledAfter returns scheduled, auto-publish posts due after now.
	GetScheduledAfter(now time.Time) ([]*models.Post, error)
	// GetUpcomingPosts returns scheduled posts due after now, soonest first.
	GetUpcomingPosts(now time.Time, limit int) ([]*models.Post, error)
}

// PublisherResolver yields the publisher responsible for a platform.
type PublisherResolver interface {
	For(platform models.Platform) (publishers.Publisher, bool)
}

// Scheduler owns all timing decisions for auto-published posts: it arms a
// one-shot timer per scheduled post for low-latency publishing, and runs a
// fixed-interval sweep that re-scans the store for overdue posts so that
// nothing is lost across restarts. It is the sole mutator of a post's
// scheduling state.
type Scheduler struct {
	store      PostStore
	publishers PublisherResolver

	cron           *cron.Cron
	sweepSpec      string
	publishTimeout time.Duration

	mu          sync.Mutex
	timers      map[string]*time.Timer
	initialized bool

	locksMu sync.Mutex
	locks   map[string]*postLock
}

type postLock struct {
	mu   sync.Mutex
	refs int
}

func NewScheduler(store PostStore, resolver PublisherResolver, sweepInterval, publishTimeout time.Duration) *Scheduler {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	if publishTimeout <= 0 {
		publishTimeout = 2 * time.Minute
	}

	return &Scheduler{
		store:          store,
		publishers:     resolver,
		cron:           cron.New(),
		sweepSpec:      fmt.Sprintf("@every %s", sweepInterval),
		publishTimeout: publishTimeout,
		timers:         make(map[string]*time.Timer),
		locks:          make(map[string]*postLock),
	}
}

// Initialize arms timers for every scheduled auto-publish post with a
// future due date and starts the background sweep. Calling it more than
// once is a no-op. Store errors during the initial load are logged, not
// fatal: the sweep picks up anything the load missed.
func (s *Scheduler) Initialize() error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	posts, err := s.store.GetScheduledAfter(time.Now())
	if err != nil {
		utils.Errorf("Error loading scheduled posts: %v", err)
	} else {
		for _, post := range posts {
			if err := s.SchedulePost(post); err != nil {
				utils.Errorf("Error arming timer for post %s: %v", post.ID, err)
			}
		}
		utils.Infof("Loaded %d scheduled posts", len(posts))
	}

	if _, err := s.cron.AddFunc(s.sweepSpec, s.Sweep); err != nil {
		return fmt.Errorf("starting sweep: %w", err)
	}
	s.cron.Start()

	utils.Infof("Scheduler initialized (sweep %s)", s.sweepSpec)
	return nil
}

// Stop halts the sweep and disarms all timers. In-flight publish attempts
// are not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Sweep publishes every due post in one pass. Each post's outcome is
// independent: a store or publisher failure on one post never aborts the
// rest of the batch.
func (s *Scheduler) Sweep() {
	posts, err := s.store.GetDuePosts(time.Now())
	if err != nil {
		utils.Errorf("Error fetching due posts: %v", err)
		return
	}

	for _, post := range posts {
		if err := s.PublishPost(post.ID); err != nil {
			utils.Errorf("Error publishing post %s: %v", post.ID, err)
		}
	}
}

// SchedulePost (re)arms a one-shot timer firing at the post's scheduled
// time, replacing any existing timer for the same post. An already-due
// post fires immediately; the publish path re-checks eligibility either
// way.
func (s *Scheduler) SchedulePost(post *models.Post) error {
	if post.ScheduledAt == nil {
		return fmt.Errorf("post %s has no scheduled time", post.ID)
	}

	delay := time.Until(*post.ScheduledAt)
	if delay < 0 {
		delay = 0
	}

	id := post.ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.removeTimer(id)
		if err := s.PublishPost(id); err != nil {
			utils.Errorf("Error publishing post %s: %v", id, err)
		}
	})

	return nil
}

// Cancel disarms the post's timer and reverts it to a draft with
// auto-publish off. A post already past the publish status flip is left
// untouched, so cancelling an in-flight or completed publish is a no-op.
func (s *Scheduler) Cancel(postID string) error {
	unlock := s.lockPost(postID)
	defer unlock()

	s.removeTimer(postID)

	post, err := s.store.GetPost(postID)
	if err != nil {
		return fmt.Errorf("loading post %s: %w", postID, err)
	}
	if post.Status != models.StatusScheduled {
		return nil
	}

	draft := models.StatusDraft
	off := false
	return s.store.UpdatePostFields(postID, models.PostUpdate{
		Status:      &draft,
		AutoPublish: &off,
	})
}

// ListArmedPosts returns the ids of posts currently holding a live timer.
func (s *Scheduler) ListArmedPosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	return ids
}

// GetUpcomingPosts lists scheduled posts due after now, soonest first.
func (s *Scheduler) GetUpcomingPosts(limit int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.GetUpcomingPosts(time.Now(), limit)
}

// PublishPost attempts to publish a single post by id. The attempt is
// serialized per post id, and eligibility is re-read from the store under
// that lock, so a timer fire racing the sweep results in exactly one
// publish: the loser observes a status other than "scheduled" and returns
// without acting.
//
// Publisher failures and the no-media precondition are recorded on the
// post (status "failed" plus an error message) and do not surface as
// errors; only store failures do.
func (s *Scheduler) PublishPost(postID string) error {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.store.GetPost(postID)
	if err != nil {
		return fmt.Errorf("loading post %s: %w", postID, err)
	}
	if post.Status != models.StatusScheduled || !post.AutoPublish {
		return nil
	}

	s.removeTimer(postID)

	if len(post.MediaURLs) == 0 {
		return s.markFailed(post, errNoMediaMessage)
	}

	publisher, ok := s.publishers.For(post.Platform)
	if !ok {
		return s.markFailed(post, fmt.Sprintf("no publisher registered for platform %s", post.Platform))
	}

	utils.Infof("Publishing scheduled post %s (%s)", post.ID, post.Title)

	caption := BuildCaption(post)
	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()

	result := publisher.Publish(ctx, post.MediaURLs, caption)
	if !result.Success {
		return s.markFailed(post, result.Message)
	}

	now := time.Now()
	published := models.StatusPublished
	if err := s.store.UpdatePostFields(post.ID, models.PostUpdate{
		Status:         &published,
		PublishedAt:    &now,
		ExternalPostID: &result.ExternalID,
	}); err != nil {
		return fmt.Errorf("marking post %s published: %w", post.ID, err)
	}

	utils.Infof("Post %s published (external id %s)", post.ID, result.ExternalID)

	if post.PublishMode == models.PublishModeRecurring && post.Recurrence.Type != models.RecurrenceNone {
		if err := s.createNextOccurrence(post); err != nil {
			utils.Errorf("Error creating next occurrence of post %s: %v", post.ID, err)
		}
	}

	return nil
}

// createNextOccurrence clones a recurring post into its next scheduled
// occurrence. Publish-result fields are reset explicitly so the successor
// never inherits the original's external id or failure info. No successor
// is created once the computed date passes the rule's end date.
func (s *Scheduler) createNextOccurrence(post *models.Post) error {
	if post.ScheduledAt == nil {
		return nil
	}

	next, ok := NextOccurrence(*post.ScheduledAt, post.Recurrence)
	if !ok {
		return nil
	}
	if post.Recurrence.EndDate != nil && next.After(*post.Recurrence.EndDate) {
		return nil
	}

	now := time.Now()
	successor := *post
	successor.ID = uuid.New().String()
	successor.Status = models.StatusScheduled
	successor.ScheduledAt = &next
	successor.PublishedAt = nil
	successor.ExternalPostID = ""
	successor.ErrorMessage = ""
	successor.FailedAt = nil
	successor.CreatedAt = now
	successor.UpdatedAt = now

	if err := s.store.CreatePost(&successor); err != nil {
		return err
	}

	utils.Infof("Next occurrence of post %s scheduled for %s", post.ID, next.Format(time.RFC3339))
	return s.SchedulePost(&successor)
}

func (s *Scheduler) markFailed(post *models.Post, message string) error {
	utils.Warnf("Post %s failed to publish: %s", post.ID, message)

	now := time.Now()
	failed := models.StatusFailed
	if err := s.store.UpdatePostFields(post.ID, models.PostUpdate{
		Status:       &failed,
		ErrorMessage: &message,
		FailedAt:     &now,
	}); err != nil {
		return fmt.Errorf("marking post %s failed: %w", post.ID, err)
	}
	return nil
}

func (s *Scheduler) removeTimer(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[postID]; ok {
		timer.Stop()
		delete(s.timers, postID)
	}
}

// lockPost serializes publish and cancel attempts per post id. Entries
// are reference-counted and removed once the last holder releases.
func (s *Scheduler) lockPost(postID string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[postID]
	if !ok {
		lock = &postLock{}
		s.locks[postID] = lock
	}
	lock.refs++
	s.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		s.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, postID)
		}
		s.locksMu.Unlock()
	}
}
