// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"errors"
	"maps"
	"slices"
)

// Set maps every registered capability to a boolean. It is an immutable
// value: With returns a modified copy. The zero Set has every capability
// disabled.
type Set struct {
	values map[ID]bool
}

// NewSet builds a Set from an identifier to boolean mapping. Registry keys
// missing from values default to false; unknown keys are rejected.
func NewSet(values map[string]bool) (Set, error) {
	s := Set{values: make(map[ID]bool, len(registry))}
	for _, c := range registry {
		s.values[c.ID] = false
	}

	var errs []error
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if _, known := s.values[ID(key)]; !known {
			errs = append(errs, &UnknownCapabilityError{ID: key})
			continue
		}
		s.values[ID(key)] = values[key]
	}
	if len(errs) > 0 {
		return Set{}, errors.Join(errs...)
	}
	return s, nil
}

// Enabled reports whether id is enabled. Unknown identifiers report false.
func (s Set) Enabled(id ID) bool {
	return s.values[id]
}

// With returns a copy of s with id set to enabled.
func (s Set) With(id ID, enabled bool) Set {
	out := Set{values: maps.Clone(s.values)}
	if out.values == nil {
		out.values = make(map[ID]bool, len(registry))
	}
	out.values[id] = enabled
	return out
}

// EnabledIDs returns the enabled capabilities in registry order.
func (s Set) EnabledIDs() []ID {
	var ids []ID
	for _, c := range registry {
		if s.values[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Map returns the set as a plain map keyed by identifier, with an entry for
// every registered capability.
func (s Set) Map() map[string]bool {
	out := make(map[string]bool, len(registry))
	for _, c := range registry {
		out[string(c.ID)] = s.values[c.ID]
	}
	return out
}
