package engine

import (
	"time"

	"github.com/pkg/errors"

	"github.com/gebv/offsync/protocol"
)

//go:generate reform

//reform:offsync.transactions
type Transaction struct {
	// TransactionID внутренний идентификатор транзакции.
	TransactionID int64 `reform:"tx_id,pk"`

	// ReferenceID стабильный ключ разговора, назначенный протоколом.
	ReferenceID string `reform:"reference_id"`

	Type TransactionType `reform:"type"`

	// Status статус транзакции (производный кэш command_json).
	Status TransactionStatus `reform:"status"`

	Amount   int64  `reform:"amount"`
	Currency string `reform:"currency"`

	SourceID         *int64 `reform:"source_id"`
	SourceAddress    string `reform:"source_address"`
	SourceSubaddress string `reform:"source_subaddress"`

	DestinationID         *int64 `reform:"destination_id"`
	DestinationAddress    string `reform:"destination_address"`
	DestinationSubaddress string `reform:"destination_subaddress"`

	// CommandJSON последняя принятая команда протокола, источник истины.
	CommandJSON string `reform:"command_json"`

	// Sequence и BlockchainVersion заполняются после успешного сабмита в ledger.
	Sequence          *int64 `reform:"sequence"`
	BlockchainVersion *int64 `reform:"blockchain_version"`

	UpdatedAt time.Time `reform:"updated_at"`
	CreatedAt time.Time `reform:"created_at"`
}

func (t *Transaction) BeforeInsert() error {
	t.UpdatedAt = time.Now()
	t.CreatedAt = time.Now()
	if t.ReferenceID == "" {
		return errors.New("empty reference_id")
	}
	return nil
}

func (t *Transaction) BeforeUpdate() error {
	t.UpdatedAt = time.Now()
	return nil
}

//reform:offsync.preapprovals
type FundsPullPreApproval struct {
	// FundsPullPreApprovalID уникальный идентификатор, назначенный протоколом.
	FundsPullPreApprovalID string `reform:"funds_pull_pre_approval_id,pk"`

	AccountID int64 `reform:"account_id"`

	// Address и BillerAddress неизменяемы после создания записи.
	Address       string `reform:"address"`
	BillerAddress string `reform:"biller_address"`

	Type                string `reform:"type"`
	ExpirationTimestamp int64  `reform:"expiration_timestamp"`

	MaxCumulativeUnit            *string `reform:"max_cumulative_unit"`
	MaxCumulativeUnitValue       *int64  `reform:"max_cumulative_unit_value"`
	MaxCumulativeAmount          *int64  `reform:"max_cumulative_amount"`
	MaxCumulativeAmountCurrency  *string `reform:"max_cumulative_amount_currency"`
	MaxTransactionAmount         *int64  `reform:"max_transaction_amount"`
	MaxTransactionAmountCurrency *string `reform:"max_transaction_amount_currency"`

	Description *string `reform:"description"`

	Status protocol.PreApprovalStatus `reform:"status"`

	// Role какая сторона мы в этой авторизации, фиксируется при создании.
	Role Role `reform:"role"`

	// Sent передано ли текущее локальное состояние контрагенту.
	Sent bool `reform:"sent"`

	UpdatedAt time.Time `reform:"updated_at"`
	CreatedAt time.Time `reform:"created_at"`
}

func (a *FundsPullPreApproval) BeforeInsert() error {
	a.UpdatedAt = time.Now()
	a.CreatedAt = time.Now()
	if a.FundsPullPreApprovalID == "" {
		return errors.New("empty funds_pull_pre_approval_id")
	}
	if a.Role == UNKNOWN_ROLE {
		return errors.New("unknown role")
	}
	return nil
}

func (a *FundsPullPreApproval) BeforeUpdate() error {
	a.UpdatedAt = time.Now()
	return nil
}

type TransactionType string

func (t TransactionType) Match(in TransactionType) bool {
	return t == in
}

const (
	ONCHAIN_TX_TYPE  TransactionType = "onchain"
	OFFCHAIN_TX_TYPE TransactionType = "offchain"
)

type TransactionStatus string

func (s TransactionStatus) Match(in TransactionStatus) bool {
	return s == in
}

const (
	OUTBOUND_TX  TransactionStatus = "offchain_outbound"
	INBOUND_TX   TransactionStatus = "offchain_inbound"
	WAIT_TX      TransactionStatus = "offchain_wait"
	READY_TX     TransactionStatus = "offchain_ready"
	COMPLETED_TX TransactionStatus = "completed"
	CANCELED_TX  TransactionStatus = "canceled"
)

type Role string

func (r Role) Match(in Role) bool {
	return r == in
}

const (
	UNKNOWN_ROLE Role = ""
	PAYER        Role = "payer"
	PAYEE        Role = "payee"
)
