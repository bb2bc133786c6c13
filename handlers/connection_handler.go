package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ContentCalendarAPI/models"
	"ContentCalendarAPI/utils"

	"github.com/google/uuid"
)

type connectInstagramRequest struct {
	IGUserID       string     `json:"ig_user_id"`
	Username       string     `json:"username"`
	AccessToken    string     `json:"access_token"`
	TokenExpiresAt *time.Time `json:"token_expires_at"`
}

// ConnectInstagram stores (or replaces) the user's Instagram business
// account connection. The access token is encrypted before it hits the
// database.
func (h *Handler) ConnectInstagram(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req connectInstagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.IGUserID == "" || req.AccessToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ig_user_id and access_token are required")
		return
	}

	encryptedToken, err := utils.EncryptToken(req.AccessToken)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error protecting access token")
		return
	}

	now := time.Now()
	conn := &models.InstagramConnection{
		ID:             uuid.New().String(),
		UserID:         userID,
		IGUserID:       req.IGUserID,
		Username:       req.Username,
		AccessToken:    encryptedToken,
		TokenExpiresAt: req.TokenExpiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.db.SaveInstagramConnection(conn); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving connection")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Instagram account connected"})
}

// GetInstagramConnection reports whether the user has a connection and
// its public details. The token itself is never returned.
func (h *Handler) GetInstagramConnection(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	conn, err := h.db.GetInstagramConnection(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"connected": false})
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching connection")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"connected":  true,
		"connection": conn,
	})
}

func (h *Handler) DisconnectInstagram(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	if err := h.db.DeleteInstagramConnection(userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error disconnecting account")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Instagram account disconnected"})
}
