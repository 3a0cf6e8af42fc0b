package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ToJSON serializes a command to its persisted textual form.
func ToJSON(c Command) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed marshal command")
	}
	return string(raw), nil
}

// PaymentFromJSON decodes a persisted payment command.
func PaymentFromJSON(data string) (*PaymentCommand, error) {
	var c PaymentCommand
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, errors.Wrap(ErrMalformedCommand, err.Error())
	}
	if c.Payment.ReferenceID == "" {
		return nil, errors.Wrap(ErrMalformedCommand, "missing payment.reference_id")
	}
	return &c, nil
}

// PreApprovalFromJSON decodes a persisted preapproval command.
func PreApprovalFromJSON(data string) (*FundsPullPreApprovalCommand, error) {
	var c FundsPullPreApprovalCommand
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, errors.Wrap(ErrMalformedCommand, err.Error())
	}
	if c.FundsPullPreApproval.FundsPullPreApprovalID == "" {
		return nil, errors.Wrap(ErrMalformedCommand, "missing funds_pull_pre_approval_id")
	}
	return &c, nil
}
