package repository

import "time"

type options struct {
	clock       func() time.Time
	autoMigrate bool
}

func defaultOptions() options {
	return options{clock: time.Now, autoMigrate: true}
}

// Option configures a directory.
type Option func(*options)

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithAutoMigrate controls schema migration when opening a SQL directory.
func WithAutoMigrate(enabled bool) Option {
	return func(o *options) { o.autoMigrate = enabled }
}
