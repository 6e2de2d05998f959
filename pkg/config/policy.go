package config

import "sync/atomic"

// RetentionPolicy is a hot-reloadable, read-only view of the retention
// threshold. The sweeper reads it once per cycle; the config watcher
// updates it when the configuration file changes. Updates apply to the
// next cycle, never the one in flight.
//
// The value is a single scalar behind an atomic, so readers never block
// writers and vice versa.
type RetentionPolicy struct {
	days atomic.Int64
}

// NewRetentionPolicy returns a policy initialized to the given number of
// retention days.
func NewRetentionPolicy(days int) *RetentionPolicy {
	p := &RetentionPolicy{}
	p.days.Store(int64(days))
	return p
}

// RetentionDays returns the current retention threshold in whole days.
func (p *RetentionPolicy) RetentionDays() int {
	return int(p.days.Load())
}

// SetRetentionDays replaces the retention threshold. Negative values are
// ignored; validation happens at config load time.
func (p *RetentionPolicy) SetRetentionDays(days int) {
	if days < 0 {
		return
	}
	p.days.Store(int64(days))
}
