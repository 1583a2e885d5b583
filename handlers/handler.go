package handlers

import (
	"go.uber.org/zap"

	"github.com/padraicbc/multibuilder/session"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	sessions *session.Store
	log      *zap.Logger
}

// New creates a Handler over the session store.
func New(sessions *session.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{sessions: sessions, log: logger.Named("handlers")}
}
