package memory

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestIndexFailurePolicy(t *testing.T) {
	// A broken index entry for a new memory must be visible to the caller;
	// stale entries from failed updates or deletes are tolerated because the
	// content store stays authoritative.
	gt.Equal(t, IndexFailurePolicy[OpCreate], Propagate)
	gt.Equal(t, IndexFailurePolicy[OpUpdate], Swallow)
	gt.Equal(t, IndexFailurePolicy[OpDelete], Swallow)
}
