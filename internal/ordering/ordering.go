// Package ordering maintains the denormalized child-id sequences that parents
// keep for display order. All functions are pure: inputs are never mutated and
// results are fresh slices.
package ordering

import (
	"errors"
	"fmt"
)

// ErrNotPermutation is returned when a proposed order does not contain exactly
// the live child ids (duplicates, unknown ids, or missing ids).
var ErrNotPermutation = errors.New("order is not a permutation of the live child set")

// Append returns order with id added at the end. If id is already present the
// order is returned unchanged: appending must never introduce a duplicate.
func Append(order []string, id string) []string {
	if Contains(order, id) {
		return clone(order)
	}
	next := make([]string, 0, len(order)+1)
	next = append(next, order...)
	return append(next, id)
}

// Remove returns order with id removed. Removing an absent id is a no-op, not
// an error, so deletes stay idempotent after a partial failure.
func Remove(order []string, id string) []string {
	next := make([]string, 0, len(order))
	for _, existing := range order {
		if existing == id {
			continue
		}
		next = append(next, existing)
	}
	return next
}

// InsertAt returns order with id inserted at the requested position. The index
// is clamped into [0, len(order)]: a client-supplied index may be stale
// relative to concurrent state, and clamping keeps the insert in bounds while
// staying close to the requested intent. If id is already present the order is
// returned unchanged.
func InsertAt(order []string, id string, index int) []string {
	if Contains(order, id) {
		return clone(order)
	}
	if index < 0 {
		index = 0
	}
	if index > len(order) {
		index = len(order)
	}
	next := make([]string, 0, len(order)+1)
	next = append(next, order[:index]...)
	next = append(next, id)
	return append(next, order[index:]...)
}

// Replace validates next against the live child ids and returns a copy of it.
// It fails with ErrNotPermutation unless next contains exactly the live ids.
func Replace(live, next []string) ([]string, error) {
	if err := Validate(next, live); err != nil {
		return nil, err
	}
	return clone(next), nil
}

// Validate checks that order is a duplicate-free permutation of live.
func Validate(order, live []string) error {
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("duplicate id %q: %w", id, ErrNotPermutation)
		}
		seen[id] = true
	}
	liveSet := make(map[string]bool, len(live))
	for _, id := range live {
		liveSet[id] = true
	}
	for _, id := range order {
		if !liveSet[id] {
			return fmt.Errorf("unknown id %q: %w", id, ErrNotPermutation)
		}
	}
	for _, id := range live {
		if !seen[id] {
			return fmt.Errorf("missing id %q: %w", id, ErrNotPermutation)
		}
	}
	return nil
}

// Contains reports whether id appears in order.
func Contains(order []string, id string) bool {
	for _, existing := range order {
		if existing == id {
			return true
		}
	}
	return false
}

func clone(order []string) []string {
	next := make([]string, len(order))
	copy(next, order)
	return next
}
