package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique identifier for sessions and other
// server-generated handles. Wire-visible entity IDs come from the database.
func New() string {
	return ksuid.New().String()
}
