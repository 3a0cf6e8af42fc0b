package offsync

import "context"

// LedgerClient submits agreed transfers to the external ledger.
type LedgerClient interface {
	// SubmitP2PTransfer submits a peer-to-peer transfer with travel rule
	// metadata and returns the sequence number and ledger version of the
	// committed transaction.
	SubmitP2PTransfer(ctx context.Context, req P2PTransferRequest) (*P2PTransferResult, error)
}

type P2PTransferRequest struct {
	DestinationAddress []byte
	Currency           string
	Amount             int64
	Metadata           []byte
	RecipientSignature []byte
}

type P2PTransferResult struct {
	SequenceNumber int64
	Version        int64
}

// KycProvider returns compliance data for a local account.
type KycProvider interface {
	GetUserKycInfo(accountID int64) (KycData, error)
}

type KycData struct {
	Type          string `json:"type"`
	GivenName     string `json:"given_name,omitempty"`
	Surname       string `json:"surname,omitempty"`
	Dob           string `json:"dob,omitempty"`
	LegalEntityID string `json:"legal_entity_id,omitempty"`
}
