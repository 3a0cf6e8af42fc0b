package storage

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"

	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/engine"
)

// Postgres is the reform-backed repository.
type Postgres struct {
	db *reform.DB
}

var _ engine.Repository = (*Postgres)(nil)

func NewPostgres(db *reform.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) GetTransaction(referenceID string) (*engine.Transaction, error) {
	var txn engine.Transaction
	err := s.db.SelectOneTo(&txn, "WHERE reference_id = $1", referenceID)
	if err == reform.ErrNoRows {
		return nil, errors.Wrapf(offsync.ErrNotFound, "transaction %s", referenceID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed select transaction")
	}
	return &txn, nil
}

func (s *Postgres) SaveTransaction(txn *engine.Transaction) error {
	return errors.Wrap(s.db.Save(txn), "failed save transaction")
}

func (s *Postgres) TransactionsByStatus(status engine.TransactionStatus) ([]*engine.Transaction, error) {
	rows, err := s.db.SelectAllFrom(engine.TransactionTable, "WHERE status = $1 ORDER BY tx_id ASC", status)
	if err != nil {
		return nil, errors.Wrap(err, "failed select transactions by status")
	}
	res := make([]*engine.Transaction, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.(*engine.Transaction))
	}
	return res, nil
}

func (s *Postgres) TransactionsByAccount(accountID int64) ([]*engine.Transaction, error) {
	rows, err := s.db.SelectAllFrom(engine.TransactionTable, "WHERE source_id = $1 OR destination_id = $1 ORDER BY tx_id ASC", accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed select transactions by account")
	}
	res := make([]*engine.Transaction, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.(*engine.Transaction))
	}
	return res, nil
}

func (s *Postgres) GetPreApproval(id string) (*engine.FundsPullPreApproval, error) {
	var rec engine.FundsPullPreApproval
	err := s.db.FindByPrimaryKeyTo(&rec, id)
	if err == reform.ErrNoRows {
		return nil, errors.Wrapf(offsync.ErrNotFound, "preapproval %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed select preapproval")
	}
	return &rec, nil
}

// SavePreApproval upserts: the primary key is protocol-assigned, so reform's
// Save cannot tell insert from update here.
func (s *Postgres) SavePreApproval(rec *engine.FundsPullPreApproval) error {
	err := s.db.Update(rec)
	if err == reform.ErrNoRows {
		return errors.Wrap(s.db.Insert(rec), "failed insert preapproval")
	}
	return errors.Wrap(err, "failed update preapproval")
}

func (s *Postgres) PreApprovalsBySentStatus(sent bool) ([]*engine.FundsPullPreApproval, error) {
	rows, err := s.db.SelectAllFrom(engine.FundsPullPreApprovalTable, "WHERE sent = $1 ORDER BY created_at ASC", sent)
	if err != nil {
		return nil, errors.Wrap(err, "failed select preapprovals by sent status")
	}
	res := make([]*engine.FundsPullPreApproval, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.(*engine.FundsPullPreApproval))
	}
	return res, nil
}

func (s *Postgres) PreApprovalsByAccount(accountID int64) ([]*engine.FundsPullPreApproval, error) {
	rows, err := s.db.SelectAllFrom(engine.FundsPullPreApprovalTable, "WHERE account_id = $1 ORDER BY created_at ASC", accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed select preapprovals by account")
	}
	res := make([]*engine.FundsPullPreApproval, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.(*engine.FundsPullPreApproval))
	}
	return res, nil
}

func (s *Postgres) GenerateSubaddress(accountID int64) ([]byte, error) {
	sub := make([]byte, 8)
	if _, err := rand.Read(sub); err != nil {
		return nil, errors.Wrap(err, "failed generate subaddress")
	}
	_, err := s.db.Exec(
		`INSERT INTO offsync.subaddresses (subaddress, account_id) VALUES ($1, $2)`,
		hex.EncodeToString(sub), accountID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed store subaddress")
	}
	return sub, nil
}

func (s *Postgres) AccountIDFromSubaddress(sub []byte) (int64, error) {
	var accountID int64
	err := s.db.QueryRow(
		`SELECT account_id FROM offsync.subaddresses WHERE subaddress = $1`,
		hex.EncodeToString(sub),
	).Scan(&accountID)
	if err == sql.ErrNoRows {
		return 0, errors.Wrapf(offsync.ErrNotFound, "subaddress %x", sub)
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed select subaddress")
	}
	return accountID, nil
}
