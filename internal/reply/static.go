package reply

import (
	"context"

	"github.com/avdeeva/oporabot/internal/tips"
)

// Static is the canned-phrase strategy: it ignores history and returns a
// uniformly random tip from the catalog.
type Static struct{}

// NewStatic creates the static reply generator.
func NewStatic() *Static {
	return &Static{}
}

// Generate returns a random catalog tip.
func (s *Static) Generate(_ context.Context, _ []string) string {
	return tips.Random()
}
