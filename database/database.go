package database

import (
	"database/sql"

	_ "github.com/lib/pq"
)

type Database struct {
	DB *sql.DB
}

func NewDatabase(connStr string) (*Database, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	database := &Database{DB: db}
	if err := database.createTables(); err != nil {
		return nil, err
	}

	return database, nil
}

func (d *Database) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS media (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			filename VARCHAR(255) NOT NULL,
			path VARCHAR(500) NOT NULL,
			url VARCHAR(500) NOT NULL,
			type VARCHAR(50) NOT NULL,
			size BIGINT NOT NULL,
			mime_type VARCHAR(100) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			title VARCHAR(500) NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			platform VARCHAR(50) NOT NULL DEFAULT 'instagram',
			post_type VARCHAR(50) NOT NULL DEFAULT 'feed',
			hashtags TEXT[],
			mentions TEXT[],
			media_urls TEXT[],
			status VARCHAR(50) NOT NULL DEFAULT 'draft',
			scheduled_at TIMESTAMP,
			published_at TIMESTAMP,
			auto_publish BOOLEAN NOT NULL DEFAULT false,
			publish_mode VARCHAR(50) NOT NULL DEFAULT 'manual',
			recurrence_type VARCHAR(50) NOT NULL DEFAULT 'none',
			recurrence_interval INT NOT NULL DEFAULT 1,
			recurrence_end_date TIMESTAMP,
			recurrence_days INT[],
			external_post_id VARCHAR(255),
			error_message TEXT,
			failed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		// The sweep and the upcoming-posts query both filter on these.
		`CREATE INDEX IF NOT EXISTS idx_posts_status_scheduled_at
			ON posts (status, scheduled_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user_created
			ON posts (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS instagram_connections (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL UNIQUE,
			ig_user_id VARCHAR(255) NOT NULL,
			username VARCHAR(255) NOT NULL DEFAULT '',
			access_token TEXT NOT NULL,
			token_expires_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}

	for _, query := range queries {
		if _, err := d.DB.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
