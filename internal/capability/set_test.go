// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"errors"
	"slices"
	"testing"
)

func TestNewSet(t *testing.T) {
	t.Parallel()

	s, err := NewSet(map[string]bool{"network": true, "x11": false})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	m := s.Map()
	if len(m) != len(All()) {
		t.Errorf("Map() has %d keys, want one per capability (%d)", len(m), len(All()))
	}
	if !s.Enabled(Network) || s.Enabled(X11) || s.Enabled(Terminal) {
		t.Errorf("unexpected set contents: %v", m)
	}
	if got := s.EnabledIDs(); !slices.Equal(got, []ID{Network}) {
		t.Errorf("EnabledIDs() = %v", got)
	}
}

func TestNewSet_UnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := NewSet(map[string]bool{"network": true, "warp": true, "cloak": false})
	if err == nil {
		t.Fatal("expected error for unknown keys")
	}
	if !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("error does not wrap ErrUnknownCapability: %v", err)
	}
	var unknown *UnknownCapabilityError
	if !errors.As(err, &unknown) {
		t.Fatalf("error is not *UnknownCapabilityError: %T", err)
	}
	// keys are checked in sorted order
	if unknown.ID != "cloak" {
		t.Errorf("first reported id = %q, want cloak", unknown.ID)
	}
}

func TestSet_GetSet(t *testing.T) {
	t.Parallel()

	base, err := NewSet(nil)
	if err != nil {
		t.Fatalf("NewSet(nil): %v", err)
	}
	for _, c := range All() {
		updated := c.Set(true, base)
		if !c.Get(updated) {
			t.Errorf("%s: Get after Set(true) = false", c.ID)
		}
		if c.Get(base) {
			t.Errorf("%s: Set mutated the original set", c.ID)
		}
		if c.Get(c.Set(false, updated)) {
			t.Errorf("%s: Get after Set(false) = true", c.ID)
		}
	}
}

func TestSet_ZeroValue(t *testing.T) {
	t.Parallel()

	var s Set
	if s.Enabled(Network) {
		t.Error("zero Set reports an enabled capability")
	}
	if !s.With(Network, true).Enabled(Network) {
		t.Error("With on the zero Set did not enable the capability")
	}
	if len(s.EnabledIDs()) != 0 {
		t.Error("zero Set has enabled ids")
	}
}
