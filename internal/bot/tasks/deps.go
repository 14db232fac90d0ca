// Package tasks defines scheduled maintenance tasks and their registry.
package tasks

import (
	"log/slog"

	"github.com/avdeeva/oporabot/internal/config"
	"github.com/avdeeva/oporabot/internal/database"
)

// TaskDeps bundles the dependencies injected into scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
}
