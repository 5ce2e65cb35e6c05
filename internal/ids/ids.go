package ids

import "github.com/segmentio/ksuid"

// New returns a time-ordered random identifier. The leading bytes encode
// the creation second; the rest is random, so collisions are negligible
// but not cryptographically excluded.
func New() string {
	return ksuid.New().String()
}
