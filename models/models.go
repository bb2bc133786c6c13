package models

import "time"

type Platform string

const (
	Instagram Platform = "instagram"
	Facebook  Platform = "facebook"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
)

// AllPlatforms is the closed set of platforms a post can target.
var AllPlatforms = []Platform{Instagram, Facebook, Twitter, LinkedIn}

func (p Platform) Valid() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
	StatusFailed    PostStatus = "failed"
	StatusArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusFailed, StatusArchived:
		return true
	}
	return false
}

type PostType string

const (
	PostTypeFeed     PostType = "feed"
	PostTypeStory    PostType = "story"
	PostTypeReels    PostType = "reels"
	PostTypeCarousel PostType = "carousel"
)

func (t PostType) Valid() bool {
	switch t {
	case PostTypeFeed, PostTypeStory, PostTypeReels, PostTypeCarousel:
		return true
	}
	return false
}

type PublishMode string

const (
	PublishModeManual    PublishMode = "manual"
	PublishModeScheduled PublishMode = "scheduled"
	PublishModeRecurring PublishMode = "recurring"
)

func (m PublishMode) Valid() bool {
	switch m {
	case PublishModeManual, PublishModeScheduled, PublishModeRecurring:
		return true
	}
	return false
}

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

func (t RecurrenceType) Valid() bool {
	switch t {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Recurrence describes how a recurring post repeats. It is only
// interpreted when the post's PublishMode is "recurring".
type Recurrence struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`
	EndDate  *time.Time     `json:"end_date,omitempty"`
	// DaysOfWeek is reserved for weekly-by-day filtering (0 = Sunday).
	// It is stored but not enforced beyond interval arithmetic.
	DaysOfWeek []int64 `json:"days_of_week,omitempty"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Media struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Type      MediaType `json:"type"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is the unit of schedulable work in the calendar.
type Post struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Platform Platform `json:"platform"`
	PostType PostType `json:"post_type"`

	Hashtags  []string `json:"hashtags,omitempty"`
	Mentions  []string `json:"mentions,omitempty"`
	MediaURLs []string `json:"media_urls,omitempty"`

	Status      PostStatus  `json:"status"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
	AutoPublish bool        `json:"auto_publish"`
	PublishMode PublishMode `json:"publish_mode"`
	Recurrence  Recurrence  `json:"recurrence"`

	ExternalPostID string     `json:"external_post_id,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostUpdate is a partial update applied by id. Nil fields are left
// untouched. The scheduling engine mutates posts exclusively through
// this type so every write names exactly the fields it changes.
type PostUpdate struct {
	Status         *PostStatus
	ScheduledAt    *time.Time
	PublishedAt    *time.Time
	AutoPublish    *bool
	ExternalPostID *string
	ErrorMessage   *string
	FailedAt       *time.Time
}

// PostFilter narrows list queries from the authoring API.
type PostFilter struct {
	Status   PostStatus
	Platform Platform
	PostType PostType
	Limit    int
	Offset   int
}

// PublishResult is what a platform publisher reports back to the engine.
type PublishResult struct {
	Platform   Platform `json:"platform"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	ExternalID string   `json:"external_id,omitempty"`
}

// InstagramConnection links a user to an Instagram business account.
// The access token is stored encrypted at rest.
type InstagramConnection struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	IGUserID       string     `json:"ig_user_id"`
	Username       string     `json:"username"`
	AccessToken    string     `json:"-"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UploadResponse struct {
	Media *Media `json:"media"`
}
