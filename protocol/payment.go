package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gebv/offsync/identifier"
)

type KycDataObject struct {
	Type           string `json:"type"`
	PayloadVersion int    `json:"payload_version,omitempty"`
	GivenName      string `json:"given_name,omitempty"`
	Surname        string `json:"surname,omitempty"`
	Dob            string `json:"dob,omitempty"`
	LegalEntityID  string `json:"legal_entity_id,omitempty"`
}

type StatusObject struct {
	Status       ActorStatus `json:"status"`
	AbortCode    string      `json:"abort_code,omitempty"`
	AbortMessage string      `json:"abort_message,omitempty"`
}

type PaymentActorObject struct {
	Address string         `json:"address"`
	KycData *KycDataObject `json:"kyc_data,omitempty"`
	Status  StatusObject   `json:"status"`
}

type PaymentActionObject struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

type PaymentObject struct {
	ReferenceID        string              `json:"reference_id"`
	Sender             PaymentActorObject  `json:"sender"`
	Receiver           PaymentActorObject  `json:"receiver"`
	Action             PaymentActionObject `json:"action"`
	RecipientSignature string              `json:"recipient_signature,omitempty"`
	Description        string              `json:"description,omitempty"`
}

// PaymentCommand is one step of a payment conversation. Inbound marks whether
// the local side received it (as opposed to produced it).
type PaymentCommand struct {
	CID            string        `json:"cid"`
	MyActorAddress string        `json:"my_actor_address"`
	Inbound        bool          `json:"inbound"`
	Payment        PaymentObject `json:"payment"`
}

// InitPaymentCommand builds the first command of a locally initiated payment.
// The sender shares its KYC data up front and waits for the receiver's.
func InitPaymentCommand(senderAddress string, senderKyc *KycDataObject, receiverAddress string, amount int64, currency string) *PaymentCommand {
	return &PaymentCommand{
		CID:            uuid.New().String(),
		MyActorAddress: senderAddress,
		Payment: PaymentObject{
			ReferenceID: uuid.New().String(),
			Sender: PaymentActorObject{
				Address: senderAddress,
				KycData: senderKyc,
				Status:  StatusObject{Status: NEEDS_KYC_DATA_AS},
			},
			Receiver: PaymentActorObject{
				Address: receiverAddress,
				Status:  StatusObject{Status: NONE_AS},
			},
			Action: PaymentActionObject{
				Amount:    amount,
				Currency:  currency,
				Action:    "charge",
				Timestamp: time.Now().Unix(),
			},
		},
	}
}

func (c *PaymentCommand) CommandType() CommandType { return PAYMENT_CMD }
func (c *PaymentCommand) ReferenceID() string      { return c.Payment.ReferenceID }
func (c *PaymentCommand) CommandID() string        { return c.CID }

func (c *PaymentCommand) IsSender() bool {
	return c.MyActorAddress == c.Payment.Sender.Address
}

func (c *PaymentCommand) IsReceiver() bool {
	return c.MyActorAddress == c.Payment.Receiver.Address
}

func (c *PaymentCommand) IsInbound() bool { return c.Inbound }

func (c *PaymentCommand) MyActor() *PaymentActorObject {
	if c.IsSender() {
		return &c.Payment.Sender
	}
	return &c.Payment.Receiver
}

func (c *PaymentCommand) OpponentActor() *PaymentActorObject {
	if c.IsSender() {
		return &c.Payment.Receiver
	}
	return &c.Payment.Sender
}

func (c *PaymentCommand) IsBothReady() bool {
	return c.Payment.Sender.Status.Status.Match(READY_FOR_SETTLEMENT_AS) &&
		c.Payment.Receiver.Status.Status.Match(READY_FOR_SETTLEMENT_AS)
}

func (c *PaymentCommand) IsAbort() bool {
	return c.Payment.Sender.Status.Status.Match(ABORT_AS) ||
		c.Payment.Receiver.Status.Status.Match(ABORT_AS)
}

// FollowUpAction computes the next local step the command state implies.
func (c *PaymentCommand) FollowUpAction() Action {
	if c.IsAbort() || c.IsBothReady() {
		return NO_ACTION
	}
	my := c.MyActor()
	switch my.Status.Status {
	case READY_FOR_SETTLEMENT_AS:
		return NO_ACTION
	case SOFT_MATCH_AS:
		return REVIEW_KYC_DATA
	}
	op := c.OpponentActor()
	if op.KycData != nil || op.Status.Status.Match(READY_FOR_SETTLEMENT_AS) {
		return EVALUATE_KYC_DATA
	}
	return NO_ACTION
}

// NewCommand produces the next outbound command of the conversation with the
// local actor evolved. Zero values leave the corresponding field untouched.
func (c *PaymentCommand) NewCommand(status ActorStatus, kyc *KycDataObject, recipientSignature string) *PaymentCommand {
	next := *c
	next.CID = uuid.New().String()
	next.Inbound = false
	my := next.MyActor()
	if status != "" {
		my.Status = StatusObject{Status: status}
	}
	if kyc != nil {
		my.KycData = kyc
	}
	if recipientSignature != "" {
		next.Payment.RecipientSignature = recipientSignature
	}
	return &next
}

// Equal reports whether two commands describe the identical exchange,
// including the cid. An inbound retry of the same exchange compares equal.
func (c *PaymentCommand) Equal(in *PaymentCommand) bool {
	a, err := json.Marshal(c)
	if err != nil {
		return false
	}
	b, err := json.Marshal(in)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// Validate checks that the command is a legal evolution of prior: immutable
// fields unchanged and both actor statuses moved forward (or kept) per the
// transition chart.
func (c *PaymentCommand) Validate(prior *PaymentCommand) error {
	if c.Payment.ReferenceID != prior.Payment.ReferenceID {
		return NewError(CodeInvalidCommand, "payment.reference_id", "reference_id is immutable")
	}
	if c.Payment.Action != prior.Payment.Action {
		return NewError(CodeInvalidCommand, "payment.action", "action is immutable")
	}
	if c.Payment.Sender.Address != prior.Payment.Sender.Address {
		return NewError(CodeInvalidCommand, "payment.sender.address", "sender address is immutable")
	}
	if c.Payment.Receiver.Address != prior.Payment.Receiver.Address {
		return NewError(CodeInvalidCommand, "payment.receiver.address", "receiver address is immutable")
	}
	if prior.Payment.RecipientSignature != "" && c.Payment.RecipientSignature != prior.Payment.RecipientSignature {
		return NewError(CodeInvalidCommand, "payment.recipient_signature", "recipient_signature is immutable")
	}
	if err := validateActorEvolution("payment.sender", &prior.Payment.Sender, &c.Payment.Sender); err != nil {
		return err
	}
	return validateActorEvolution("payment.receiver", &prior.Payment.Receiver, &c.Payment.Receiver)
}

func validateActorEvolution(field string, prior, next *PaymentActorObject) error {
	if next.Status.Status.Match(prior.Status.Status) {
		return nil
	}
	if !actorStatusTransitionChart.Allowed(prior.Status.Status, next.Status.Status) {
		return NewError(CodeInvalidStatusTransition, field+".status",
			"status may not move from "+string(prior.Status.Status)+" to "+string(next.Status.Status))
	}
	return nil
}

type travelRuleMetadata struct {
	OffChainReferenceID string `json:"off_chain_reference_id"`
	SenderAddress       string `json:"sender_address"`
}

const attestSuffix = "@@$$OFFSYNC_ATTEST$$@@"

// TravelRuleMetadata returns the metadata blob submitted to the ledger and
// the message the recipient signs over it.
func (c *PaymentCommand) TravelRuleMetadata() (metadata, sigMsg []byte, err error) {
	metadata, err = json.Marshal(travelRuleMetadata{
		OffChainReferenceID: c.Payment.ReferenceID,
		SenderAddress:       c.Payment.Sender.Address,
	})
	if err != nil {
		return nil, nil, err
	}
	sigMsg = append(append([]byte{}, metadata...), []byte(c.Payment.ReferenceID+attestSuffix)...)
	return metadata, sigMsg, nil
}

// ReceiverAccountAddress decodes the receiver's on-chain address.
func (c *PaymentCommand) ReceiverAccountAddress(hrp string) ([]byte, error) {
	onchain, _, err := identifier.Decode(hrp, c.Payment.Receiver.Address)
	return onchain, err
}

// ReceiverSubaddress decodes the receiver's subaddress.
func (c *PaymentCommand) ReceiverSubaddress(hrp string) ([]byte, error) {
	_, sub, err := identifier.Decode(hrp, c.Payment.Receiver.Address)
	return sub, err
}
