// SPDX-License-Identifier: MPL-2.0

package application

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrSelectorNotFound is the sentinel error wrapped by SelectorNotFoundError.
	ErrSelectorNotFound = errors.New("selector not found")
	// ErrAmbiguousSelector is the sentinel error wrapped by AmbiguousSelectorError.
	ErrAmbiguousSelector = errors.New("ambiguous selector")
	// ErrDuplicateApplication is returned when two files declare the same name.
	ErrDuplicateApplication = errors.New("duplicate application")
)

type (
	// Catalog is the set of applications known to an invocation, ordered by
	// name.
	Catalog struct {
		apps []Application
	}

	// SelectorNotFoundError is returned when no application matches a selector.
	SelectorNotFoundError struct {
		Selector string
		Known    []string
	}

	// AmbiguousSelectorError is returned when a selector matches several
	// applications.
	AmbiguousSelectorError struct {
		Selector   string
		Candidates []string
	}
)

// Error implements the error interface.
func (e *SelectorNotFoundError) Error() string {
	if e.Selector == "" {
		return "no application defined"
	}
	return fmt.Sprintf("application %q not found", e.Selector)
}

// Unwrap returns ErrSelectorNotFound for errors.Is() compatibility.
func (e *SelectorNotFoundError) Unwrap() error { return ErrSelectorNotFound }

// Error implements the error interface.
func (e *AmbiguousSelectorError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("several applications defined, pick one of: %s", strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("application %q is ambiguous, candidates: %s", e.Selector, strings.Join(e.Candidates, ", "))
}

// Unwrap returns ErrAmbiguousSelector for errors.Is() compatibility.
func (e *AmbiguousSelectorError) Unwrap() error { return ErrAmbiguousSelector }

// NewCatalog builds a catalog. Application names must be unique.
func NewCatalog(apps ...Application) (*Catalog, error) {
	sorted := slices.Clone(apps)
	slices.SortStableFunc(sorted, func(a, b Application) int { return strings.Compare(a.Name, b.Name) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateApplication, sorted[i].Name)
		}
	}
	return &Catalog{apps: sorted}, nil
}

// LoadCatalog loads every application file in order into one catalog.
func LoadCatalog(paths ...string) (*Catalog, error) {
	var apps []Application
	for _, p := range paths {
		loaded, err := Load(p)
		if err != nil {
			return nil, err
		}
		apps = append(apps, loaded...)
	}
	return NewCatalog(apps...)
}

// Applications returns the catalog entries ordered by name.
func (c *Catalog) Applications() []Application {
	return slices.Clone(c.apps)
}

// Names returns the application names in order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.apps))
	for i, a := range c.apps {
		names[i] = a.Name
	}
	return names
}

// Len returns the number of applications.
func (c *Catalog) Len() int { return len(c.apps) }

// Select resolves selector to a single application. An exact name wins;
// otherwise the selector must be the prefix of exactly one name. An empty
// selector picks the only application of a single-entry catalog.
func (c *Catalog) Select(selector string) (Application, error) {
	if selector == "" {
		switch len(c.apps) {
		case 0:
			return Application{}, &SelectorNotFoundError{}
		case 1:
			return c.apps[0], nil
		default:
			return Application{}, &AmbiguousSelectorError{Candidates: c.Names()}
		}
	}

	var matches []Application
	for _, a := range c.apps {
		if a.Name == selector {
			return a, nil
		}
		if strings.HasPrefix(a.Name, selector) {
			matches = append(matches, a)
		}
	}

	switch len(matches) {
	case 0:
		return Application{}, &SelectorNotFoundError{Selector: selector, Known: c.Names()}
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = m.Name
		}
		return Application{}, &AmbiguousSelectorError{Selector: selector, Candidates: candidates}
	}
}
