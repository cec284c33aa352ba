package pipeline

import (
	"strings"

	"grapevine.app/firehose/internal/domain"
)

// RetentionCap bounds each consumer's retained history.
const RetentionCap = 100

// Role distinguishes the always-present primary consumer from
// user-created secondary ones.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// Consumer is one filtered view over the event stream: a keyword
// filter plus a bounded newest-first retention buffer. Consumers are
// owned by the Registry; all mutation happens under its lock.
type Consumer struct {
	id       int64
	role     Role
	filter   string
	retained []domain.Event
}

// matches evaluates the consumer's filter against the event text,
// case-insensitively.
//
// The empty filter is asymmetric on purpose: the primary consumer with
// no filter is the unfiltered firehose and matches everything, while a
// secondary with no filter is "not yet configured" and matches nothing
// until the user supplies a keyword.
func (c *Consumer) matches(ev domain.Event) bool {
	if c.filter == "" {
		return c.role == RolePrimary
	}
	return strings.Contains(strings.ToLower(ev.Text), strings.ToLower(c.filter))
}

// retain inserts the event at the front of the retention buffer and
// evicts from the back beyond capacity.
func (c *Consumer) retain(ev domain.Event) {
	if len(c.retained) < RetentionCap {
		c.retained = append(c.retained, domain.Event{})
	}
	copy(c.retained[1:], c.retained)
	c.retained[0] = ev
}

// snapshot returns a copy of the retained events, newest first.
func (c *Consumer) snapshot() []domain.Event {
	out := make([]domain.Event, len(c.retained))
	copy(out, c.retained)
	return out
}

func (c *Consumer) setFilter(filter string) {
	c.filter = filter
	// History is not re-filtered under the new keyword; only events
	// dispatched from now on are evaluated against it.
	c.retained = nil
}
