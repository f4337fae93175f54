// Package userlock serializes state mutations per user. Completing a task,
// buying in the shop and the evening settlement all read-modify-write the
// same user row; the registry guarantees those sections never interleave
// for one user while different users proceed in parallel.
package userlock

import (
	"sync"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// Registry hands out one mutex per Telegram ID. Entries are never evicted:
// the set of users is small and bounded, so the map stays tiny.
type Registry struct {
	mu    sync.Mutex
	locks map[shared.TelegramID]*sync.Mutex
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[shared.TelegramID]*sync.Mutex),
	}
}

// get returns the mutex for the given user, creating it on first use.
func (r *Registry) get(id shared.TelegramID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

// Lock acquires the user's mutex and returns the unlock function.
//
//	defer locks.Lock(userID)()
func (r *Registry) Lock(id shared.TelegramID) func() {
	l := r.get(id)
	l.Lock()
	return l.Unlock
}

// Do runs fn while holding the user's mutex.
func (r *Registry) Do(id shared.TelegramID, fn func() error) error {
	defer r.Lock(id)()
	return fn()
}
