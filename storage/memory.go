// Package storage provides the persistence implementations of the engine
// repository contract.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/engine"
)

// Memory is a map-backed repository for tests and development mode.
type Memory struct {
	mu           sync.Mutex
	lastTxID     int64
	transactions map[string]*engine.Transaction
	preapprovals map[string]*engine.FundsPullPreApproval
	subaddresses map[string]int64
}

var _ engine.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		transactions: make(map[string]*engine.Transaction),
		preapprovals: make(map[string]*engine.FundsPullPreApproval),
		subaddresses: make(map[string]int64),
	}
}

func (m *Memory) GetTransaction(referenceID string) (*engine.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[referenceID]
	if !ok {
		return nil, errors.Wrapf(offsync.ErrNotFound, "transaction %s", referenceID)
	}
	return copyTransaction(txn), nil
}

func (m *Memory) SaveTransaction(txn *engine.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.TransactionID == 0 {
		if err := txn.BeforeInsert(); err != nil {
			return err
		}
		m.lastTxID++
		txn.TransactionID = m.lastTxID
	} else {
		if err := txn.BeforeUpdate(); err != nil {
			return err
		}
	}
	m.transactions[txn.ReferenceID] = copyTransaction(txn)
	return nil
}

func (m *Memory) TransactionsByStatus(status engine.TransactionStatus) ([]*engine.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*engine.Transaction
	for _, txn := range m.transactions {
		if txn.Status.Match(status) {
			res = append(res, copyTransaction(txn))
		}
	}
	return res, nil
}

func (m *Memory) TransactionsByAccount(accountID int64) ([]*engine.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*engine.Transaction
	for _, txn := range m.transactions {
		if (txn.SourceID != nil && *txn.SourceID == accountID) ||
			(txn.DestinationID != nil && *txn.DestinationID == accountID) {
			res = append(res, copyTransaction(txn))
		}
	}
	return res, nil
}

func (m *Memory) GetPreApproval(id string) (*engine.FundsPullPreApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.preapprovals[id]
	if !ok {
		return nil, errors.Wrapf(offsync.ErrNotFound, "preapproval %s", id)
	}
	return copyPreApproval(rec), nil
}

func (m *Memory) SavePreApproval(rec *engine.FundsPullPreApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.preapprovals[rec.FundsPullPreApprovalID]; ok {
		if err := rec.BeforeUpdate(); err != nil {
			return err
		}
	} else {
		if err := rec.BeforeInsert(); err != nil {
			return err
		}
	}
	m.preapprovals[rec.FundsPullPreApprovalID] = copyPreApproval(rec)
	return nil
}

func (m *Memory) PreApprovalsBySentStatus(sent bool) ([]*engine.FundsPullPreApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*engine.FundsPullPreApproval
	for _, rec := range m.preapprovals {
		if rec.Sent == sent {
			res = append(res, copyPreApproval(rec))
		}
	}
	return res, nil
}

func (m *Memory) PreApprovalsByAccount(accountID int64) ([]*engine.FundsPullPreApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*engine.FundsPullPreApproval
	for _, rec := range m.preapprovals {
		if rec.AccountID == accountID {
			res = append(res, copyPreApproval(rec))
		}
	}
	return res, nil
}

func (m *Memory) GenerateSubaddress(accountID int64) ([]byte, error) {
	sub := make([]byte, 8)
	if _, err := rand.Read(sub); err != nil {
		return nil, errors.Wrap(err, "failed generate subaddress")
	}
	m.mu.Lock()
	m.subaddresses[hex.EncodeToString(sub)] = accountID
	m.mu.Unlock()
	return sub, nil
}

func (m *Memory) AccountIDFromSubaddress(sub []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.subaddresses[hex.EncodeToString(sub)]
	if !ok {
		return 0, errors.Wrapf(offsync.ErrNotFound, "subaddress %x", sub)
	}
	return id, nil
}

// RegisterSubaddress pins a known subaddress to an account, for tests and
// seeding.
func (m *Memory) RegisterSubaddress(sub []byte, accountID int64) {
	m.mu.Lock()
	m.subaddresses[hex.EncodeToString(sub)] = accountID
	m.mu.Unlock()
}

func copyTransaction(txn *engine.Transaction) *engine.Transaction {
	c := *txn
	c.SourceID = copyInt64(txn.SourceID)
	c.DestinationID = copyInt64(txn.DestinationID)
	c.Sequence = copyInt64(txn.Sequence)
	c.BlockchainVersion = copyInt64(txn.BlockchainVersion)
	return &c
}

func copyPreApproval(rec *engine.FundsPullPreApproval) *engine.FundsPullPreApproval {
	c := *rec
	c.MaxCumulativeUnit = copyStr(rec.MaxCumulativeUnit)
	c.MaxCumulativeUnitValue = copyInt64(rec.MaxCumulativeUnitValue)
	c.MaxCumulativeAmount = copyInt64(rec.MaxCumulativeAmount)
	c.MaxCumulativeAmountCurrency = copyStr(rec.MaxCumulativeAmountCurrency)
	c.MaxTransactionAmount = copyInt64(rec.MaxTransactionAmount)
	c.MaxTransactionAmountCurrency = copyStr(rec.MaxTransactionAmountCurrency)
	c.Description = copyStr(rec.Description)
	return &c
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyStr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
