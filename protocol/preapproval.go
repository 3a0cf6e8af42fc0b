package protocol

import "github.com/google/uuid"

// PreApprovalStatus is the protocol status of a fund-pull preapproval.
type PreApprovalStatus string

func (s PreApprovalStatus) Match(in PreApprovalStatus) bool {
	return s == in
}

const (
	PENDING_PA  PreApprovalStatus = "pending"
	VALID_PA    PreApprovalStatus = "valid"
	REJECTED_PA PreApprovalStatus = "rejected"
	CLOSED_PA   PreApprovalStatus = "closed"
)

const PreApprovalTypeConsent = "consent"

type CurrencyObject struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type ScopedCumulativeAmountObject struct {
	Unit      string         `json:"unit"`
	Value     int64          `json:"value"`
	MaxAmount CurrencyObject `json:"max_amount"`
}

type PreApprovalScopeObject struct {
	Type                 string                        `json:"type"`
	ExpirationTimestamp  int64                         `json:"expiration_timestamp"`
	MaxCumulativeAmount  *ScopedCumulativeAmountObject `json:"max_cumulative_amount,omitempty"`
	MaxTransactionAmount *CurrencyObject               `json:"max_transaction_amount,omitempty"`
}

type PreApprovalObject struct {
	FundsPullPreApprovalID string                 `json:"funds_pull_pre_approval_id"`
	Address                string                 `json:"address"`
	BillerAddress          string                 `json:"biller_address"`
	Scope                  PreApprovalScopeObject `json:"scope"`
	Status                 PreApprovalStatus      `json:"status"`
	Description            string                 `json:"description,omitempty"`
}

// FundsPullPreApprovalCommand is one step of a recurring-payment
// authorization conversation.
type FundsPullPreApprovalCommand struct {
	CID                  string            `json:"cid"`
	MyActorAddress       string            `json:"my_actor_address"`
	FundsPullPreApproval PreApprovalObject `json:"funds_pull_pre_approval"`
}

// NewPreApprovalCommand wraps a preapproval object as an outbound command
// with a fresh cid.
func NewPreApprovalCommand(myActorAddress string, obj PreApprovalObject) *FundsPullPreApprovalCommand {
	return &FundsPullPreApprovalCommand{
		CID:                  uuid.New().String(),
		MyActorAddress:       myActorAddress,
		FundsPullPreApproval: obj,
	}
}

func (c *FundsPullPreApprovalCommand) CommandType() CommandType { return PREAPPROVAL_CMD }
func (c *FundsPullPreApprovalCommand) ReferenceID() string {
	return c.FundsPullPreApproval.FundsPullPreApprovalID
}
func (c *FundsPullPreApprovalCommand) CommandID() string { return c.CID }
