package rubric

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownDimension is returned when a requested dimension id is not in
// the registry. Check with errors.Is.
var ErrUnknownDimension = errors.New("unknown dimension")

// MalformedDimensionError indicates a dimension document that could not be
// loaded: missing id, missing purpose, missing or invalid evidence tiers.
type MalformedDimensionError struct {
	// Source identifies the offending document (file path or dimension id).
	Source string

	// Reason describes what is missing or invalid.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *MalformedDimensionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed dimension %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed dimension %s: %s", e.Source, e.Reason)
}

func (e *MalformedDimensionError) Unwrap() error {
	return e.Err
}

// IsMalformedDimension reports whether err is a MalformedDimensionError.
func IsMalformedDimension(err error) bool {
	var malformed *MalformedDimensionError
	return errors.As(err, &malformed)
}

// Registry holds loaded dimensions. It is read-only after construction, so
// concurrent reads need no locking.
type Registry struct {
	dimensions map[string]Dimension
	ids        []string // sorted
}

// NewRegistry builds a registry from the given dimensions.
// Every dimension must validate, and ids must be unique.
func NewRegistry(dims []Dimension) (*Registry, error) {
	byID := make(map[string]Dimension, len(dims))
	ids := make([]string, 0, len(dims))

	for _, d := range dims {
		if err := d.Validate(); err != nil {
			return nil, &MalformedDimensionError{Source: d.ID, Reason: "validation failed", Err: err}
		}
		if _, exists := byID[d.ID]; exists {
			return nil, &MalformedDimensionError{Source: d.ID, Reason: "duplicate dimension id"}
		}
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}
	sort.Strings(ids)

	return &Registry{dimensions: byID, ids: ids}, nil
}

// Get returns the dimension with the given id.
// Fails with ErrUnknownDimension when absent.
func (r *Registry) Get(id string) (Dimension, error) {
	d, ok := r.dimensions[id]
	if !ok {
		return Dimension{}, fmt.Errorf("%w: %s", ErrUnknownDimension, id)
	}
	return d, nil
}

// List returns all dimensions ordered by id.
func (r *Registry) List() []Dimension {
	dims := make([]Dimension, 0, len(r.ids))
	for _, id := range r.ids {
		dims = append(dims, r.dimensions[id])
	}
	return dims
}

// IDs returns the sorted dimension ids.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.ids))
	copy(ids, r.ids)
	return ids
}

// Len returns the number of loaded dimensions.
func (r *Registry) Len() int {
	return len(r.dimensions)
}
