// Package handlers contains the Telegram message and command handlers that
// make up the response pipeline, along with their registration metadata.
package handlers

import (
	"log/slog"

	"github.com/avdeeva/oporabot/internal/access"
	"github.com/avdeeva/oporabot/internal/config"
	"github.com/avdeeva/oporabot/internal/database"
	"github.com/avdeeva/oporabot/internal/history"
	"github.com/avdeeva/oporabot/internal/ratelimit"
	"github.com/avdeeva/oporabot/internal/reply"
)

// HandlerDeps bundles the dependencies injected into every handler. The
// limiter and history buffer are owned here for the process lifetime and are
// mutated only from the handler path.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Generator reply.Generator
	Policy    *access.Policy
	Limiter   *ratelimit.Limiter
	History   *history.Buffer
}
