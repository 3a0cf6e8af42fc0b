// Package engine reconciles locally held payment conversations with off-chain
// commands exchanged with the counterpart VASP and drives settlement on the
// ledger.
package engine

import (
	"crypto/ed25519"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/protocol"
)

// ErrUnsupportedAction marks a follow-up action this engine does not
// implement. Terminal for the record until its stored command changes.
var ErrUnsupportedAction = errors.New("unsupported offchain action")

// Repository is the persistence contract consumed by the engine. All
// implementations return offsync.ErrNotFound for unknown ids.
type Repository interface {
	GetTransaction(referenceID string) (*Transaction, error)
	SaveTransaction(txn *Transaction) error
	TransactionsByStatus(status TransactionStatus) ([]*Transaction, error)
	TransactionsByAccount(accountID int64) ([]*Transaction, error)

	GetPreApproval(id string) (*FundsPullPreApproval, error)
	SavePreApproval(rec *FundsPullPreApproval) error
	PreApprovalsBySentStatus(sent bool) ([]*FundsPullPreApproval, error)
	PreApprovalsByAccount(accountID int64) ([]*FundsPullPreApproval, error)

	GenerateSubaddress(accountID int64) ([]byte, error)
	AccountIDFromSubaddress(sub []byte) (int64, error)
}

// Config is the explicit, injected configuration of the engine.
type Config struct {
	// VASPAddress is the local on-chain address.
	VASPAddress []byte

	// AddressHRP is the account identifier prefix of the network.
	AddressHRP string

	// CompliancePrivateKey signs outbound envelopes and travel rule
	// attestations.
	CompliancePrivateKey ed25519.PrivateKey
}

type Engine struct {
	cfg    Config
	repo   Repository
	client protocol.Client
	ledger offsync.LedgerClient
	kyc    offsync.KycProvider
	locker *Locker
	nc     *nats.EncodedConn
	l      *zap.Logger
}

// New builds the engine. nc is optional: with nil, status updates are not
// published.
func New(cfg Config, repo Repository, client protocol.Client, ledger offsync.LedgerClient, kyc offsync.KycProvider, nc *nats.EncodedConn) *Engine {
	return &Engine{
		cfg:    cfg,
		repo:   repo,
		client: client,
		ledger: ledger,
		kyc:    kyc,
		locker: NewLocker(),
		nc:     nc,
		l:      zap.L().Named("offchain_engine"),
	}
}

func (e *Engine) sign(msg []byte) []byte {
	return ed25519.Sign(e.cfg.CompliancePrivateKey, msg)
}

func (e *Engine) userKycData(accountID int64) (*protocol.KycDataObject, error) {
	data, err := e.kyc.GetUserKycInfo(accountID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed get kyc info for account %d", accountID)
	}
	return &protocol.KycDataObject{
		Type:           data.Type,
		PayloadVersion: 1,
		GivenName:      data.GivenName,
		Surname:        data.Surname,
		Dob:            data.Dob,
		LegalEntityID:  data.LegalEntityID,
	}, nil
}

const TxUpdateSubject = "offsync.updates.tx"

type MessageUpdateTransaction struct {
	ReferenceID string
	Status      TransactionStatus
}

func (e *Engine) publishTxUpdate(txn *Transaction) {
	if e.nc == nil {
		return
	}
	err := e.nc.Publish(TxUpdateSubject, &MessageUpdateTransaction{
		ReferenceID: txn.ReferenceID,
		Status:      txn.Status,
	})
	if err != nil {
		e.l.Warn("Failed publish transaction update.", zap.Error(err), zap.String("reference_id", txn.ReferenceID))
	}
}

func validateExpirationTimestamp(expirationTimestamp int64) error {
	if expirationTimestamp <= time.Now().Unix() {
		return offsync.ErrExpired
	}
	return nil
}
