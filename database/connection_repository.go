package database

import "ContentCalendarAPI/models"

// SaveInstagramConnection upserts a user's Instagram connection. A user
// holds at most one connection; reconnecting replaces the stored token.
func (d *Database) SaveInstagramConnection(conn *models.InstagramConnection) error {
	query := `INSERT INTO instagram_connections
			  (id, user_id, ig_user_id, username, access_token, token_expires_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (user_id)
			  DO UPDATE SET ig_user_id = $3, username = $4, access_token = $5,
			                token_expires_at = $6, updated_at = $8`

	_, err := d.DB.Exec(query, conn.ID, conn.UserID, conn.IGUserID, conn.Username,
		conn.AccessToken, conn.TokenExpiresAt, conn.CreatedAt, conn.UpdatedAt)
	return err
}

func (d *Database) GetInstagramConnection(userID string) (*models.InstagramConnection, error) {
	conn := &models.InstagramConnection{}
	query := `SELECT id, user_id, ig_user_id, username, access_token, token_expires_at, created_at, updated_at
			  FROM instagram_connections WHERE user_id = $1`

	err := d.DB.QueryRow(query, userID).Scan(&conn.ID, &conn.UserID, &conn.IGUserID,
		&conn.Username, &conn.AccessToken, &conn.TokenExpiresAt, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (d *Database) DeleteInstagramConnection(userID string) error {
	_, err := d.DB.Exec(`DELETE FROM instagram_connections WHERE user_id = $1`, userID)
	return err
}
