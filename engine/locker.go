package engine

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/gebv/offsync"
)

// Locker provides exclusive critical sections per conversation key.
// Different keys never block each other.
type Locker struct {
	mu   sync.Mutex
	keys map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{keys: make(map[string]*lockEntry)}
}

// Lock acquires the lock for key and returns its release func.
func (l *Locker) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.keys[key]
	if !ok {
		entry = &lockEntry{}
		l.keys[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.keys, key)
		}
		l.mu.Unlock()
	}
}

// lockForUpdate runs fn over the freshest transaction for the reference id
// (nil when absent) under the conversation lock and persists a non-nil
// result. A nil result from fn commits nothing. On error nothing is written
// and the error propagates.
func (e *Engine) lockForUpdate(referenceID string, fn func(txn *Transaction) (*Transaction, error)) (*Transaction, error) {
	unlock := e.locker.Lock("tx/" + referenceID)
	defer unlock()

	txn, err := e.repo.GetTransaction(referenceID)
	if err != nil && !errors.Is(err, offsync.ErrNotFound) {
		return nil, errors.Wrapf(err, "failed find transaction %s", referenceID)
	}

	next, err := fn(txn)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return txn, nil
	}
	if err := e.repo.SaveTransaction(next); err != nil {
		return nil, errors.Wrapf(err, "failed save transaction %s", referenceID)
	}
	e.publishTxUpdate(next)
	return next, nil
}

// lockPreApprovalForUpdate is lockForUpdate for preapproval records. The key
// space is distinct from transactions.
func (e *Engine) lockPreApprovalForUpdate(id string, fn func(rec *FundsPullPreApproval) (*FundsPullPreApproval, error)) (*FundsPullPreApproval, error) {
	unlock := e.locker.Lock("fppa/" + id)
	defer unlock()

	rec, err := e.repo.GetPreApproval(id)
	if err != nil && !errors.Is(err, offsync.ErrNotFound) {
		return nil, errors.Wrapf(err, "failed find preapproval %s", id)
	}

	next, err := fn(rec)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return rec, nil
	}
	if err := e.repo.SavePreApproval(next); err != nil {
		return nil, errors.Wrapf(err, "failed save preapproval %s", id)
	}
	return next, nil
}
