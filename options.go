package rrfs

import "github.com/go-logr/logr"

// options holds Open's configurable behavior, built up from functional
// Option values the way the teacher's iso.Options/iso.Option pair works.
type options struct {
	logger     logr.Logger
	defaultUid uint32
	defaultGid uint32
}

// Option configures Open. Mirrors the teacher's functional-options
// pattern (iso.WithRockRidgeEnabled, iso.WithStripVersionInfo, ...)
// renamed to this module's own knobs.
type Option func(*options)

// WithLogger sets the logr.Logger Open hands to pkg/volume's descriptor
// scan. SUSP parsing during directory decoding does not receive it and
// logs nothing. The zero value discards output.
func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDefaultOwner sets the uid/gid reported by Getattr for records with
// no Rock Ridge PX field, per spec.md §6.2 ("uid/gid = host caller's").
// Defaults to 0/0 when not set.
func WithDefaultOwner(uid, gid uint32) Option {
	return func(o *options) {
		o.defaultUid = uid
		o.defaultGid = gid
	}
}

func buildOptions(opts ...Option) options {
	var o options
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
