// Package flags provides feature flag support for catalog behavior that is
// still a policy decision. Flags are read-only after initialization and
// provide safe defaults for unknown flags.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/marquee/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagStrictReferences refuses to destroy a person while any movie still
	// references them as director or actor. When disabled, destroying a person
	// cascades: movies they directed are destroyed and they are removed from casts.
	FlagStrictReferences = "strict-references"

	// FlagShowDiff makes movie:update print a field diff of the change by default.
	FlagShowDiff = "show-diff"
)

// Defaults returns the default value of every known flag.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagStrictReferences: false,
		FlagShowDiff:         true,
	}
}

// Known returns the sorted names of all known flags.
func Known() []string {
	return slices.Sorted(maps.Keys(Defaults()))
}

// Registry holds feature flag state loaded from configuration.
// Flags are read-only after initialization.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	if flags == nil {
		flags = make(map[string]bool)
	}
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// NewWithDefaults creates a Registry from Defaults overlaid with the config map.
func NewWithDefaults(flags map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, flags)
	return New(merged)
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags (safe default).
// Returns false when called on nil registry (nil-safe).
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags (for debugging/logging).
// Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
