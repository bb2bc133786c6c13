package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ContentCalendarAPI/models"
	"ContentCalendarAPI/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type postRequest struct {
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Platform    models.Platform    `json:"platform"`
	PostType    models.PostType    `json:"post_type"`
	Hashtags    []string           `json:"hashtags"`
	Mentions    []string           `json:"mentions"`
	MediaURLs   []string           `json:"media_urls"`
	ScheduledAt *time.Time         `json:"scheduled_at"`
	AutoPublish *bool              `json:"auto_publish"`
	PublishMode models.PublishMode `json:"publish_mode"`
	Recurrence  *models.Recurrence `json:"recurrence"`
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Title == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Title is required")
		return
	}

	now := time.Now()
	post := &models.Post{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Content:     req.Content,
		Platform:    models.Instagram,
		PostType:    models.PostTypeFeed,
		Hashtags:    req.Hashtags,
		Mentions:    req.Mentions,
		MediaURLs:   req.MediaURLs,
		Status:      models.StatusDraft,
		PublishMode: models.PublishModeManual,
		Recurrence:  models.Recurrence{Type: models.RecurrenceNone, Interval: 1},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.Platform != "" {
		post.Platform = req.Platform
	}
	if req.PostType != "" {
		post.PostType = req.PostType
	}
	if req.PublishMode != "" {
		post.PublishMode = req.PublishMode
	}
	if req.AutoPublish != nil {
		post.AutoPublish = *req.AutoPublish
	}
	if req.Recurrence != nil {
		post.Recurrence = *req.Recurrence
	}
	if req.ScheduledAt != nil {
		post.Status = models.StatusScheduled
		post.ScheduledAt = req.ScheduledAt
	}

	if msg := validatePost(post); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.db.CreatePost(post); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating post")
		return
	}

	if post.Status == models.StatusScheduled && post.AutoPublish {
		if err := h.scheduler.SchedulePost(post); err != nil {
			utils.Errorf("Error arming timer for post %s: %v", post.ID, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	filter := models.PostFilter{
		Status:   models.PostStatus(r.URL.Query().Get("status")),
		Platform: models.Platform(r.URL.Query().Get("platform")),
		PostType: models.PostType(r.URL.Query().Get("post_type")),
		Limit:    parseIntParam(r, "limit", 50),
		Offset:   parseIntParam(r, "offset", 0),
	}

	posts, err := h.db.GetUserPosts(userID, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Platform != "" {
		post.Platform = req.Platform
	}
	if req.PostType != "" {
		post.PostType = req.PostType
	}
	if req.Hashtags != nil {
		post.Hashtags = req.Hashtags
	}
	if req.Mentions != nil {
		post.Mentions = req.Mentions
	}
	if req.MediaURLs != nil {
		post.MediaURLs = req.MediaURLs
	}
	if req.PublishMode != "" {
		post.PublishMode = req.PublishMode
	}
	if req.AutoPublish != nil {
		post.AutoPublish = *req.AutoPublish
	}
	if req.Recurrence != nil {
		post.Recurrence = *req.Recurrence
	}
	if req.ScheduledAt != nil {
		post.ScheduledAt = req.ScheduledAt
		post.Status = models.StatusScheduled
	}

	if msg := validatePost(post); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	post.UpdatedAt = time.Now()
	if err := h.db.UpdatePost(post); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating post")
		return
	}

	// Re-arm with the (possibly new) due time. A timer left over from a
	// previous schedule is harmless: the publish path re-reads the post
	// and skips anything no longer scheduled.
	if post.Status == models.StatusScheduled && post.AutoPublish && post.ScheduledAt != nil {
		if err := h.scheduler.SchedulePost(post); err != nil {
			utils.Errorf("Error arming timer for post %s: %v", post.ID, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	// Disarm any pending timer before the row disappears.
	if post.Status == models.StatusScheduled {
		if err := h.scheduler.Cancel(post.ID); err != nil {
			utils.Errorf("Error cancelling post %s before delete: %v", post.ID, err)
		}
	}

	if err := h.db.DeletePost(post.ID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting post")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

type scheduleRequest struct {
	ScheduledAt *time.Time         `json:"scheduled_at"`
	AutoPublish *bool              `json:"auto_publish"`
	PublishMode models.PublishMode `json:"publish_mode"`
	Recurrence  *models.Recurrence `json:"recurrence"`
}

// SchedulePost moves a post into the scheduled state and arms its timer.
func (h *Handler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ScheduledAt == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "scheduled_at is required")
		return
	}

	post.Status = models.StatusScheduled
	post.ScheduledAt = req.ScheduledAt
	post.AutoPublish = true
	post.PublishMode = models.PublishModeScheduled
	if req.AutoPublish != nil {
		post.AutoPublish = *req.AutoPublish
	}
	if req.PublishMode != "" {
		post.PublishMode = req.PublishMode
	}
	if req.Recurrence != nil {
		post.Recurrence = *req.Recurrence
	}

	if msg := validatePost(post); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	post.UpdatedAt = time.Now()
	if err := h.db.UpdatePost(post); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error scheduling post")
		return
	}

	if post.AutoPublish {
		if err := h.scheduler.SchedulePost(post); err != nil {
			utils.Errorf("Error arming timer for post %s: %v", post.ID, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, post)
}

// CancelSchedule disarms the post's timer and reverts it to a draft.
func (h *Handler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	if err := h.scheduler.Cancel(post.ID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error cancelling scheduled post")
		return
	}

	updated, err := h.db.GetPost(post.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching post")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) GetUpcomingPosts(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 10)

	posts, err := h.scheduler.GetUpcomingPosts(limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching upcoming posts")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetArmedPosts(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"post_ids": h.scheduler.ListArmedPosts(),
	})
}

// loadOwnedPost fetches the post in the path and enforces ownership.
// On failure it writes the error response and returns ok = false.
func (h *Handler) loadOwnedPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	userID := r.Context().Value("userID").(string)
	postID := mux.Vars(r)["id"]

	post, err := h.db.GetPost(postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching post")
		}
		return nil, false
	}

	if post.UserID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
		return nil, false
	}

	return post, true
}

func validatePost(post *models.Post) string {
	if !post.Platform.Valid() {
		return "Invalid platform"
	}
	if !post.PostType.Valid() {
		return "Invalid post type"
	}
	if !post.PublishMode.Valid() {
		return "Invalid publish mode"
	}
	if post.Recurrence.Type != "" && !post.Recurrence.Type.Valid() {
		return "Invalid recurrence type"
	}
	if post.Recurrence.Interval < 0 {
		return "Recurrence interval must be positive"
	}
	if post.Status == models.StatusScheduled && post.ScheduledAt == nil {
		return "Scheduled posts require scheduled_at"
	}
	return ""
}

func parseIntParam(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
