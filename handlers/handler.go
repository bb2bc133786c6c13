package handlers

import (
	"ContentCalendarAPI/database"
	"ContentCalendarAPI/services"
)

type Handler struct {
	db          *database.Database
	scheduler   *services.Scheduler
	authService *services.AuthService
	storage     *services.StorageService
}

func NewHandler(db *database.Database, scheduler *services.Scheduler, authService *services.AuthService, storage *services.StorageService) *Handler {
	return &Handler{
		db:          db,
		scheduler:   scheduler,
		authService: authService,
		storage:     storage,
	}
}
