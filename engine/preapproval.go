package engine

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/identifier"
	"github.com/gebv/offsync/protocol"
)

// EstablishPreApprovalParams describes a preapproval established by the local
// payer.
type EstablishPreApprovalParams struct {
	AccountID              int64
	BillerAddress          string
	FundsPullPreApprovalID string
	Type                   string
	ExpirationTimestamp    int64

	MaxCumulativeUnit            *string
	MaxCumulativeUnitValue       *int64
	MaxCumulativeAmount          *int64
	MaxCumulativeAmountCurrency  *string
	MaxTransactionAmount         *int64
	MaxTransactionAmountCurrency *string

	Description *string
}

// EstablishFundsPullPreApproval creates a preapproval on behalf of the local
// payer. The next dispatch cycle transmits it to the biller.
func (e *Engine) EstablishFundsPullPreApproval(p EstablishPreApprovalParams) error {
	if err := validateExpirationTimestamp(p.ExpirationTimestamp); err != nil {
		return err
	}

	sub, err := e.repo.GenerateSubaddress(p.AccountID)
	if err != nil {
		return errors.Wrapf(err, "failed generate subaddress for account %d", p.AccountID)
	}
	address, err := identifier.Encode(e.cfg.AddressHRP, e.cfg.VASPAddress, sub)
	if err != nil {
		return err
	}

	_, err = e.lockPreApprovalForUpdate(p.FundsPullPreApprovalID, func(rec *FundsPullPreApproval) (*FundsPullPreApproval, error) {
		if rec != nil {
			return nil, errors.Wrapf(offsync.ErrAlreadyExists, "preapproval %s", p.FundsPullPreApprovalID)
		}
		return &FundsPullPreApproval{
			FundsPullPreApprovalID:       p.FundsPullPreApprovalID,
			AccountID:                    p.AccountID,
			Address:                      address,
			BillerAddress:                p.BillerAddress,
			Type:                         p.Type,
			ExpirationTimestamp:          p.ExpirationTimestamp,
			MaxCumulativeUnit:            p.MaxCumulativeUnit,
			MaxCumulativeUnitValue:       p.MaxCumulativeUnitValue,
			MaxCumulativeAmount:          p.MaxCumulativeAmount,
			MaxCumulativeAmountCurrency:  p.MaxCumulativeAmountCurrency,
			MaxTransactionAmount:         p.MaxTransactionAmount,
			MaxTransactionAmountCurrency: p.MaxTransactionAmountCurrency,
			Description:                  p.Description,
			Status:                       protocol.VALID_PA,
			Role:                         PAYER,
			Sent:                         false,
		}, nil
	})
	return err
}

// ApproveFundsPullPreApproval decides a pending inbound preapproval request.
// Only "valid" and "rejected" decisions are accepted, and only once.
func (e *Engine) ApproveFundsPullPreApproval(id string, status protocol.PreApprovalStatus) error {
	if !status.Match(protocol.VALID_PA) && !status.Match(protocol.REJECTED_PA) {
		return errors.Errorf("status must be '%s' or '%s' and not '%s'", protocol.VALID_PA, protocol.REJECTED_PA, status)
	}
	_, err := e.lockPreApprovalForUpdate(id, func(rec *FundsPullPreApproval) (*FundsPullPreApproval, error) {
		if rec == nil {
			return nil, errors.Wrapf(offsync.ErrNotFound, "preapproval %s", id)
		}
		if !rec.Status.Match(protocol.PENDING_PA) {
			return nil, errors.Errorf("could not approve preapproval with status %s", rec.Status)
		}
		rec.Status = status
		rec.Role = PAYER
		rec.Sent = false
		return rec, nil
	})
	return err
}

// saveInboundPreApprovalCommand merges an inbound preapproval command:
// creates the record on first sight with the role derived from the command
// status, otherwise updates status and scope while keeping address,
// biller_address and role fixed.
func (e *Engine) saveInboundPreApprovalCommand(cmd *protocol.FundsPullPreApprovalCommand) error {
	approval := &cmd.FundsPullPreApproval

	if err := validateExpirationTimestamp(approval.Scope.ExpirationTimestamp); err != nil {
		return protocol.NewError(protocol.CodeExpired,
			"funds_pull_pre_approval.scope.expiration_timestamp", err.Error())
	}

	role := roleFromCommandStatus(approval.Status)

	_, err := e.lockPreApprovalForUpdate(cmd.ReferenceID(), func(rec *FundsPullPreApproval) (*FundsPullPreApproval, error) {
		if rec != nil {
			if rec.Address != approval.Address || rec.BillerAddress != approval.BillerAddress {
				return nil, protocol.NewError(protocol.CodeImmutableField,
					"funds_pull_pre_approval.address", "address and biller_address are immutable")
			}
			// the role was fixed at creation, never re-derived
			next := preApprovalCommandToModel(rec.AccountID, cmd, rec.Role)
			next.Sent = true
			next.CreatedAt = rec.CreatedAt
			return next, nil
		}

		accountID, err := e.accountIDFromPreApproval(approval, role)
		if err != nil {
			return nil, err
		}
		next := preApprovalCommandToModel(accountID, cmd, role)
		next.Sent = true
		return next, nil
	})
	return err
}

// roleFromCommandStatus derives the local role at record creation: a request
// still pending decision means this side is the payer being asked, a decided
// one means this side is the biller receiving the decision.
func roleFromCommandStatus(status protocol.PreApprovalStatus) Role {
	if status == "" || status.Match(protocol.PENDING_PA) {
		return PAYER
	}
	return PAYEE
}

func (e *Engine) accountIDFromPreApproval(approval *protocol.PreApprovalObject, role Role) (int64, error) {
	address := approval.Address
	if role.Match(PAYEE) {
		address = approval.BillerAddress
	}
	_, sub, err := identifier.Decode(e.cfg.AddressHRP, address)
	if err != nil {
		return 0, protocol.NewError(protocol.CodeInvalidCommand, "funds_pull_pre_approval.address", err.Error())
	}
	accountID, err := e.repo.AccountIDFromSubaddress(sub)
	if err != nil {
		return 0, errors.Wrap(err, "failed resolve account from preapproval address")
	}
	return accountID, nil
}

// processPreApprovalDispatch transmits every preapproval whose local state
// has not reached the counterpart yet.
func (e *Engine) processPreApprovalDispatch() {
	recs, err := e.repo.PreApprovalsBySentStatus(false)
	if err != nil {
		e.l.Error("Failed select preapprovals pending dispatch.", zap.Error(err))
		return
	}
	for _, item := range recs {
		id := item.FundsPullPreApprovalID
		_, err := e.lockPreApprovalForUpdate(id, func(rec *FundsPullPreApproval) (*FundsPullPreApproval, error) {
			if rec == nil || rec.Sent {
				return nil, nil
			}
			if err := e.client.SendCommand(preApprovalModelToCommand(rec), e.sign); err != nil {
				return nil, errors.Wrap(err, "failed send preapproval command")
			}
			rec.Sent = true
			return rec, nil
		})
		if err != nil {
			driverTaskErrorsTotal.WithLabelValues("preapproval_dispatch").Inc()
			e.l.Error("Failed dispatch preapproval.", zap.Error(err), zap.String("funds_pull_pre_approval_id", id))
		}
	}
}

func preApprovalModelToCommand(rec *FundsPullPreApproval) *protocol.FundsPullPreApprovalCommand {
	myAddress := rec.Address
	if rec.Role.Match(PAYEE) {
		myAddress = rec.BillerAddress
	}

	scope := protocol.PreApprovalScopeObject{
		Type:                rec.Type,
		ExpirationTimestamp: rec.ExpirationTimestamp,
	}
	if rec.MaxCumulativeAmount != nil {
		scope.MaxCumulativeAmount = &protocol.ScopedCumulativeAmountObject{
			Unit:  strValue(rec.MaxCumulativeUnit),
			Value: intValue(rec.MaxCumulativeUnitValue),
			MaxAmount: protocol.CurrencyObject{
				Amount:   intValue(rec.MaxCumulativeAmount),
				Currency: strValue(rec.MaxCumulativeAmountCurrency),
			},
		}
	}
	if rec.MaxTransactionAmount != nil {
		scope.MaxTransactionAmount = &protocol.CurrencyObject{
			Amount:   intValue(rec.MaxTransactionAmount),
			Currency: strValue(rec.MaxTransactionAmountCurrency),
		}
	}

	return protocol.NewPreApprovalCommand(myAddress, protocol.PreApprovalObject{
		FundsPullPreApprovalID: rec.FundsPullPreApprovalID,
		Address:                rec.Address,
		BillerAddress:          rec.BillerAddress,
		Scope:                  scope,
		Status:                 rec.Status,
		Description:            strValue(rec.Description),
	})
}

func preApprovalCommandToModel(accountID int64, cmd *protocol.FundsPullPreApprovalCommand, role Role) *FundsPullPreApproval {
	approval := &cmd.FundsPullPreApproval

	rec := &FundsPullPreApproval{
		FundsPullPreApprovalID: approval.FundsPullPreApprovalID,
		AccountID:              accountID,
		Address:                approval.Address,
		BillerAddress:          approval.BillerAddress,
		Type:                   approval.Scope.Type,
		ExpirationTimestamp:    approval.Scope.ExpirationTimestamp,
		Status:                 approval.Status,
		Role:                   role,
	}
	if approval.Description != "" {
		description := approval.Description
		rec.Description = &description
	}
	if cum := approval.Scope.MaxCumulativeAmount; cum != nil {
		unit, value := cum.Unit, cum.Value
		amount, currency := cum.MaxAmount.Amount, cum.MaxAmount.Currency
		rec.MaxCumulativeUnit = &unit
		rec.MaxCumulativeUnitValue = &value
		rec.MaxCumulativeAmount = &amount
		rec.MaxCumulativeAmountCurrency = &currency
	}
	if max := approval.Scope.MaxTransactionAmount; max != nil {
		amount, currency := max.Amount, max.Currency
		rec.MaxTransactionAmount = &amount
		rec.MaxTransactionAmountCurrency = &currency
	}
	return rec
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intValue(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
