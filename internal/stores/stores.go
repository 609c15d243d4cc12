package stores

import (
	"errors"

	"tripboard/internal/models"
	"tripboard/internal/realtime"
)

// ErrPostGone is returned when a comment targets a post that is no longer in
// the local board, e.g. deleted by another member between render and submit.
var ErrPostGone = errors.New("post no longer present")

// Feed is the slice of the realtime subscriber the stores use. Subscribe
// returns the matching unsubscribe.
type Feed interface {
	Subscribe(scope realtime.Scope, onEvent func(models.ChangeEvent)) func()
}
