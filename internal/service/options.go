package service

import "time"

type settings struct {
	now             func() time.Time
	defaultAssignee string
}

// Option customises a service.
type Option func(*settings)

// WithClock replaces time.Now as the source of createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithDefaultAssignee fills the assignee of new tasks and subtasks that do
// not name one.
func WithDefaultAssignee(name string) Option {
	return func(s *settings) { s.defaultAssignee = name }
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) timestamp() time.Time {
	return s.now().UTC()
}
