package bvhmb

import "fmt"

// ConfigError reports a construction-time configuration problem (spec §7
// class 1, configuration half). The builder is never constructed when one
// of these is returned.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bvhmb: invalid config field %q: %s", e.Field, e.Reason)
}

// BuildError reports depth exceedance during recursion (spec §7 class 1,
// runtime half), which aborts the build; there is no partial tree on this
// path. The builder constructs it only for depth exceedance, with Err nil;
// errors raised by callbacks or memory reservations are returned to the
// caller unchanged, not wrapped in a BuildError.
type BuildError struct {
	Depth int
	Err   error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bvhmb: build failed at depth %d: %v", e.Depth, e.Err)
	}
	return fmt.Sprintf("bvhmb: depth limit exceeded at depth %d", e.Depth)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
