package ulog

import (
	"reflect"
)

// slot is one entry of the fixed-capacity subscriber table. A slot with a
// nil sub is empty.
type slot struct {
	sub       Subscriber
	threshold Level
}

// registry is a fixed-capacity table of subscribers, kept in slot order.
// It is not safe for concurrent use; callers hold the logger's lock.
type registry struct {
	slots []slot
}

func newRegistry(capacity int) registry {
	return registry{slots: make([]slot, capacity)}
}

// reset empties every slot without changing capacity.
func (r *registry) reset() {
	clear(r.slots)
}

// add installs sub with threshold, or updates the threshold in place when sub
// is already present. The scan is a single pass that remembers the first free
// slot; a match anywhere in the table wins over that slot.
func (r *registry) add(sub Subscriber, threshold Level) error {
	free := -1

	for i := range r.slots {
		s := &r.slots[i]
		if s.sub == nil {
			if free < 0 {
				free = i
			}

			continue
		}

		if s.sub == sub {
			s.threshold = threshold

			return nil
		}
	}

	if free < 0 {
		return ErrCapacityExceeded
	}

	r.slots[free] = slot{sub: sub, threshold: threshold}

	return nil
}

// remove empties the slot holding sub.
func (r *registry) remove(sub Subscriber) error {
	for i := range r.slots {
		if r.slots[i].sub != nil && r.slots[i].sub == sub {
			r.slots[i] = slot{}

			return nil
		}
	}

	return ErrNotSubscribed
}

// lookup returns the threshold stored for sub.
func (r *registry) lookup(sub Subscriber) (Level, bool) {
	for i := range r.slots {
		if r.slots[i].sub != nil && r.slots[i].sub == sub {
			return r.slots[i].threshold, true
		}
	}

	return 0, false
}

// occupied counts non-empty slots.
func (r *registry) occupied() int {
	n := 0

	for i := range r.slots {
		if r.slots[i].sub != nil {
			n++
		}
	}

	return n
}

// wants reports whether any occupied slot accepts level.
func (r *registry) wants(level Level) bool {
	for i := range r.slots {
		if r.slots[i].sub != nil && level >= r.slots[i].threshold {
			return true
		}
	}

	return false
}

// checkSubscriber rejects values that cannot serve as a table identity.
// Comparing two interface values holding the same incomparable dynamic type
// panics, so such subscribers are never stored. The check looks through
// interface fields, so a comparable struct carrying a slice in an any field
// is rejected too.
func checkSubscriber(sub Subscriber) error {
	if sub == nil {
		return ErrNilSubscriber
	}

	if !reflect.ValueOf(sub).Comparable() {
		return ErrIncomparableSubscriber
	}

	return nil
}
