package main

import (
	"github.com/hibiken/asynq"

	articleJob "newsroom-backend/internal/domains/article/job"
	userJob "newsroom-backend/internal/domains/user/job"
	"newsroom-backend/internal/shared"
	"newsroom-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Views
	flushViews *articleJob.FlushViewsHandler

	// Public cache invalidation
	statusChanged *articleJob.StatusChangedHandler

	// Security
	failedLogin *userJob.FailedLoginHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		flushViews:    c.FlushViewsHandler,
		statusChanged: c.StatusChangedHandler,
		failedLogin:   c.FailedLoginHandler,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeFlushViews, h.flushViews.ProcessTask)
	mux.HandleFunc(shared.TypeArticleStatusChanged, h.statusChanged.ProcessTask)
	mux.HandleFunc(shared.TypeProcessFailedLogin, h.failedLogin.ProcessTask)
}
