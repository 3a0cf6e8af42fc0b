// Package protocol implements the off-chain command objects exchanged between
// two VASPs, their JSON codec, the signed JWS envelope and the HTTP transport
// client.
package protocol

type CommandType string

func (t CommandType) Match(in CommandType) bool {
	return t == in
}

const (
	UNKNOWN_CMD     CommandType = ""
	PAYMENT_CMD     CommandType = "PaymentCommand"
	PREAPPROVAL_CMD CommandType = "FundsPullPreApprovalCommand"
)

// SignFunc signs a raw message with the compliance key.
type SignFunc func(msg []byte) []byte

// Command is one off-chain command of any kind.
type Command interface {
	CommandType() CommandType

	// ReferenceID returns the stable conversation key of the command.
	ReferenceID() string

	// CommandID returns the cid of the concrete exchange, used to address
	// the reply envelope.
	CommandID() string
}

// UnknownCommand carries a command of a type this engine does not implement.
// It is acknowledged and otherwise ignored.
type UnknownCommand struct {
	CID  string
	Type CommandType
}

func (c *UnknownCommand) CommandType() CommandType { return c.Type }
func (c *UnknownCommand) ReferenceID() string      { return "" }
func (c *UnknownCommand) CommandID() string        { return c.CID }

// Action is the follow-up step a command state implies for the local side.
type Action string

const (
	NO_ACTION         Action = ""
	EVALUATE_KYC_DATA Action = "evaluate_kyc_data"
	REVIEW_KYC_DATA   Action = "review_kyc_data"
	CLEAR_SOFT_MATCH  Action = "clear_soft_match"
)

// ActorStatus is the per-actor state of a payment conversation.
type ActorStatus string

func (s ActorStatus) Match(in ActorStatus) bool {
	return s == in
}

const (
	NONE_AS                 ActorStatus = "none"
	NEEDS_KYC_DATA_AS       ActorStatus = "needs_kyc_data"
	READY_FOR_SETTLEMENT_AS ActorStatus = "ready_for_settlement"
	SOFT_MATCH_AS           ActorStatus = "soft_match"
	ABORT_AS                ActorStatus = "abort"
)

type ActorStatusTransitionChart map[ActorStatus][]ActorStatus

func (s ActorStatusTransitionChart) Allowed(from, to ActorStatus) bool {
	list, exists := s[from]
	if !exists {
		return false
	}
	for _, status := range list {
		if status.Match(to) {
			return true
		}
	}
	return false
}

// ready_for_settlement and abort are terminal for an actor.
var actorStatusTransitionChart = ActorStatusTransitionChart{
	NONE_AS:           {NEEDS_KYC_DATA_AS, READY_FOR_SETTLEMENT_AS, SOFT_MATCH_AS, ABORT_AS},
	NEEDS_KYC_DATA_AS: {READY_FOR_SETTLEMENT_AS, SOFT_MATCH_AS, ABORT_AS},
	SOFT_MATCH_AS:     {READY_FOR_SETTLEMENT_AS, ABORT_AS},
}
