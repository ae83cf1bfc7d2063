package services

import (
	"sync"

	"github.com/benerin-indonesia/benerin/models"
	"github.com/google/uuid"
)

type ownerKey struct {
	role models.OwnerRole
	id   uuid.UUID
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

// ownerLocks serializes balance-changing work per (role, owner) inside this process.
// Different owners never wait on each other.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[ownerKey]*ownerLock
}

var balanceLocks = &ownerLocks{locks: make(map[ownerKey]*ownerLock)}

func (l *ownerLocks) lock(role models.OwnerRole, id uuid.UUID) func() {
	key := ownerKey{role: role, id: id}

	l.mu.Lock()
	ol, ok := l.locks[key]
	if !ok {
		ol = &ownerLock{}
		l.locks[key] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()

	return func() {
		ol.mu.Unlock()

		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
