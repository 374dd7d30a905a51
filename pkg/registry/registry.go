// Package registry maps element tags to the native factories that build
// their backends.
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
)

// ConflictPolicy decides what Register does with a tag that is already taken.
type ConflictPolicy int

const (
	// RejectDuplicates fails the second registration with ErrDuplicateTag.
	RejectDuplicates ConflictPolicy = iota
	// ReplaceDuplicates overwrites the earlier factory and logs a warning.
	ReplaceDuplicates
)

func (p ConflictPolicy) String() string {
	switch p {
	case ReplaceDuplicates:
		return "replace"
	default:
		return "reject"
	}
}

// ParseConflictPolicy maps "reject" or "replace" to a policy.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch s {
	case "", "reject":
		return RejectDuplicates, nil
	case "replace":
		return ReplaceDuplicates, nil
	}
	return RejectDuplicates, fmt.Errorf("registry: unknown conflict policy %q", s)
}

// Provider records which Go module contributed a factory.
type Provider struct {
	Module  string
	Version string
}

func (p Provider) String() string {
	if p.Module == "" {
		return ""
	}
	if p.Version == "" {
		return p.Module
	}
	return p.Module + "@" + p.Version
}

// Entry is one registered tag.
type Entry struct {
	Tag      string
	Factory  element.BackendFactory
	Provider Provider
}

// EntryOption customizes a registration.
type EntryOption func(*Entry) error

// WithProvider attaches module provenance to an entry. The module path and
// the semantic version are validated.
func WithProvider(modulePath, version string) EntryOption {
	return func(e *Entry) error {
		if err := module.CheckPath(modulePath); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProvider, err)
		}
		if version != "" && !semver.IsValid(version) {
			return fmt.Errorf("%w: version %q is not a semantic version", ErrInvalidProvider, version)
		}
		e.Provider = Provider{Module: modulePath, Version: semver.Canonical(version)}
		return nil
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithConflictPolicy sets how duplicate tags are handled.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(r *Registry) { r.policy = p }
}

// WithLogger overrides the package logger for this registry.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// Registry holds tag to factory bindings. It is safe for concurrent use;
// registration normally happens once during startup, followed by Seal.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	policy  ConflictPolicy
	sealed  bool
	logger  *slog.Logger
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{entries: make(map[string]Entry)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return errors.Logger()
}

// Policy reports the conflict policy.
func (r *Registry) Policy() ConflictPolicy {
	return r.policy
}

// Register binds tag to factory.
func (r *Registry) Register(tag string, factory element.BackendFactory, opts ...EntryOption) error {
	if tag == "" {
		return ErrEmptyTag
	}
	if factory == nil {
		return fmt.Errorf("%w: tag %q", ErrNilFactory, tag)
	}
	entry := Entry{Tag: tag, Factory: factory}
	for _, opt := range opts {
		if err := opt(&entry); err != nil {
			return fmt.Errorf("register %q: %w", tag, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrSealed, tag)
	}
	if prev, exists := r.entries[tag]; exists {
		if r.policy == RejectDuplicates {
			return fmt.Errorf("%w: %q", ErrDuplicateTag, tag)
		}
		r.log().Warn("replacing backend factory", "tag", tag,
			"previous", prev.Provider.String(), "provider", entry.Provider.String())
	}
	r.entries[tag] = entry
	r.log().Debug("registered backend", "tag", tag, "provider", entry.Provider.String())
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tag string, factory element.BackendFactory, opts ...EntryOption) {
	if err := r.Register(tag, factory, opts...); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for tag.
func (r *Registry) Lookup(tag string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[tag]
	return e, ok
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	_, ok := r.Lookup(tag)
	return ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	r.mu.RUnlock()
	slices.Sort(tags)
	return tags
}

// Entries returns all entries sorted by tag.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()
	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.Tag < b.Tag:
			return -1
		case a.Tag > b.Tag:
			return 1
		}
		return 0
	})
	return entries
}

// Count returns the number of registered tags.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Seal freezes the registry. Later Register calls fail with ErrSealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
