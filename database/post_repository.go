package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ContentCalendarAPI/models"

	"github.com/lib/pq"
)

const postColumns = `id, user_id, title, content, platform, post_type,
	hashtags, mentions, media_urls, status, scheduled_at, published_at,
	auto_publish, publish_mode, recurrence_type, recurrence_interval,
	recurrence_end_date, recurrence_days, external_post_id, error_message,
	failed_at, created_at, updated_at`

func (d *Database) CreatePost(post *models.Post) error {
	query := `INSERT INTO posts (` + postColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			          $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

	var externalID, errorMessage sql.NullString
	if post.ExternalPostID != "" {
		externalID = sql.NullString{String: post.ExternalPostID, Valid: true}
	}
	if post.ErrorMessage != "" {
		errorMessage = sql.NullString{String: post.ErrorMessage, Valid: true}
	}

	_, err := d.DB.Exec(query,
		post.ID, post.UserID, post.Title, post.Content, post.Platform, post.PostType,
		pq.Array(post.Hashtags), pq.Array(post.Mentions), pq.Array(post.MediaURLs),
		post.Status, post.ScheduledAt, post.PublishedAt,
		post.AutoPublish, post.PublishMode, post.Recurrence.Type, post.Recurrence.Interval,
		post.Recurrence.EndDate, pq.Array(post.Recurrence.DaysOfWeek), externalID, errorMessage,
		post.FailedAt, post.CreatedAt, post.UpdatedAt)
	return err
}

// UpdatePost rewrites the authoring-surface fields of a post. Scheduling
// outcome fields (published_at, external id, failure info) are only
// written through UpdatePostFields by the engine.
func (d *Database) UpdatePost(post *models.Post) error {
	query := `UPDATE posts SET title = $1, content = $2, platform = $3, post_type = $4,
			  hashtags = $5, mentions = $6, media_urls = $7, status = $8,
			  scheduled_at = $9, auto_publish = $10, publish_mode = $11,
			  recurrence_type = $12, recurrence_interval = $13,
			  recurrence_end_date = $14, recurrence_days = $15, updated_at = $16
			  WHERE id = $17`

	_, err := d.DB.Exec(query,
		post.Title, post.Content, post.Platform, post.PostType,
		pq.Array(post.Hashtags), pq.Array(post.Mentions), pq.Array(post.MediaURLs),
		post.Status, post.ScheduledAt, post.AutoPublish, post.PublishMode,
		post.Recurrence.Type, post.Recurrence.Interval,
		post.Recurrence.EndDate, pq.Array(post.Recurrence.DaysOfWeek),
		post.UpdatedAt, post.ID)
	return err
}

// UpdatePostFields applies a partial update, writing only the fields set
// on the PostUpdate. updated_at is always refreshed.
func (d *Database) UpdatePostFields(id string, fields models.PostUpdate) error {
	set := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if fields.Status != nil {
		add("status", *fields.Status)
	}
	if fields.ScheduledAt != nil {
		add("scheduled_at", *fields.ScheduledAt)
	}
	if fields.PublishedAt != nil {
		add("published_at", *fields.PublishedAt)
	}
	if fields.AutoPublish != nil {
		add("auto_publish", *fields.AutoPublish)
	}
	if fields.ExternalPostID != nil {
		add("external_post_id", *fields.ExternalPostID)
	}
	if fields.ErrorMessage != nil {
		add("error_message", *fields.ErrorMessage)
	}
	if fields.FailedAt != nil {
		add("failed_at", *fields.FailedAt)
	}
	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	result, err := d.DB.Exec(query, args...)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (d *Database) GetPost(id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(d.DB.QueryRow(query, id))
}

func (d *Database) GetUserPosts(userID string, filter models.PostFilter) ([]*models.Post, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Platform != "" {
		args = append(args, filter.Platform)
		where = append(where, fmt.Sprintf("platform = $%d", len(args)))
	}
	if filter.PostType != "" {
		args = append(args, filter.PostType)
		where = append(where, fmt.Sprintf("post_type = $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return d.queryPosts(query, args...)
}

// GetDuePosts returns scheduled auto-publish posts whose due time has
// passed. This is the sweep's query.
func (d *Database) GetDuePosts(now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
			  WHERE status = $1 AND scheduled_at <= $2 AND auto_publish = true
			  ORDER BY scheduled_at ASC`
	return d.queryPosts(query, models.StatusScheduled, now)
}

// GetScheduledAfter returns scheduled auto-publish posts due in the
// future, used to re-arm timers on startup.
func (d *Database) GetScheduledAfter(now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
			  WHERE status = $1 AND scheduled_at >= $2 AND auto_publish = true
			  ORDER BY scheduled_at ASC`
	return d.queryPosts(query, models.StatusScheduled, now)
}

func (d *Database) GetUpcomingPosts(now time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
			  WHERE status = $1 AND scheduled_at >= $2
			  ORDER BY scheduled_at ASC LIMIT $3`
	return d.queryPosts(query, models.StatusScheduled, now, limit)
}

func (d *Database) DeletePost(id string) error {
	_, err := d.DB.Exec(`DELETE FROM posts WHERE id = $1`, id)
	return err
}

func (d *Database) queryPosts(query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	var hashtags, mentions, mediaURLs []string
	var days []int64
	var externalID, errorMessage sql.NullString

	err := row.Scan(&post.ID, &post.UserID, &post.Title, &post.Content,
		&post.Platform, &post.PostType,
		pq.Array(&hashtags), pq.Array(&mentions), pq.Array(&mediaURLs),
		&post.Status, &post.ScheduledAt, &post.PublishedAt,
		&post.AutoPublish, &post.PublishMode,
		&post.Recurrence.Type, &post.Recurrence.Interval,
		&post.Recurrence.EndDate, pq.Array(&days),
		&externalID, &errorMessage, &post.FailedAt,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	post.Hashtags = hashtags
	post.Mentions = mentions
	post.MediaURLs = mediaURLs
	post.Recurrence.DaysOfWeek = days
	post.ExternalPostID = externalID.String
	post.ErrorMessage = errorMessage.String

	return post, nil
}
