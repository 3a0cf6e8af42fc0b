package engine

import (
	"context"
	"encoding/hex"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/protocol"
)

// ProcessOffchainTasks runs one reconciliation pass: for every transaction in
// a non-terminal off-chain status it determines and executes the follow-up
// protocol action, then dispatches pending preapproval commands. One failing
// conversation never blocks the others.
func (e *Engine) ProcessOffchainTasks(ctx context.Context) {
	e.processPaymentsByStatus(ctx, OUTBOUND_TX, e.sendOutboundCommand)
	e.processPaymentsByStatus(ctx, INBOUND_TX, e.runFollowUpAction)
	e.processPaymentsByStatus(ctx, READY_TX, e.submitToLedger)
	e.processPreApprovalDispatch()
}

type paymentTaskFn func(ctx context.Context, txn *Transaction, cmd *protocol.PaymentCommand, action protocol.Action) (*Transaction, error)

func (e *Engine) processPaymentsByStatus(ctx context.Context, status TransactionStatus, task paymentTaskFn) {
	txns, err := e.repo.TransactionsByStatus(status)
	if err != nil {
		e.l.Error("Failed select transactions by status.", zap.Error(err), zap.String("status", string(status)))
		return
	}
	for _, item := range txns {
		referenceID := item.ReferenceID
		_, err := e.lockForUpdate(referenceID, func(txn *Transaction) (*Transaction, error) {
			// the status may have advanced since the select, re-check
			// under the lock
			if txn == nil || !txn.Status.Match(status) {
				return nil, nil
			}
			cmd, err := protocol.PaymentFromJSON(txn.CommandJSON)
			if err != nil {
				return nil, err
			}
			return task(ctx, txn, cmd, cmd.FollowUpAction())
		})
		if err != nil {
			driverTaskErrorsTotal.WithLabelValues(string(status)).Inc()
			e.l.Error("Failed process offchain transaction.",
				zap.Error(err),
				zap.String("reference_id", referenceID),
				zap.String("status", string(status)),
			)
		}
	}
}

// sendOutboundCommand transmits the stored command to the counterpart and
// parks the conversation in WAIT until the reply arrives as a fresh inbound
// request.
func (e *Engine) sendOutboundCommand(_ context.Context, txn *Transaction, cmd *protocol.PaymentCommand, _ protocol.Action) (*Transaction, error) {
	if cmd.IsInbound() {
		return nil, errors.New("expected outbound command")
	}
	if err := e.client.SendCommand(cmd, e.sign); err != nil {
		return nil, errors.Wrap(err, "failed send command")
	}
	txn.Status = WAIT_TX
	return txn, nil
}

// runFollowUpAction evolves an inbound command: the receiver attaches KYC
// data and the recipient signature, the sender marks itself ready for
// settlement. The evolved command goes back to the OUTBOUND bucket unless
// both sides are already ready.
func (e *Engine) runFollowUpAction(_ context.Context, txn *Transaction, cmd *protocol.PaymentCommand, action protocol.Action) (*Transaction, error) {
	if !cmd.IsInbound() {
		return nil, errors.New("expected inbound command")
	}
	switch action {
	case protocol.NO_ACTION:
		return nil, nil
	case protocol.EVALUATE_KYC_DATA:
		next, err := e.evaluateKycData(cmd)
		if err != nil {
			return nil, err
		}
		raw, err := protocol.ToJSON(next)
		if err != nil {
			return nil, err
		}
		txn.CommandJSON = raw
		txn.Status = commandTransactionStatus(next, OUTBOUND_TX)
		return txn, nil
	default:
		// REVIEW_KYC_DATA and CLEAR_SOFT_MATCH are not implemented
		return nil, errors.Wrapf(ErrUnsupportedAction, "%s, reference_id %s", action, txn.ReferenceID)
	}
}

func (e *Engine) evaluateKycData(cmd *protocol.PaymentCommand) (*protocol.PaymentCommand, error) {
	if cmd.IsReceiver() {
		return e.sendKycDataAndRecipientSignature(cmd)
	}
	return cmd.NewCommand(protocol.READY_FOR_SETTLEMENT_AS, nil, ""), nil
}

func (e *Engine) sendKycDataAndRecipientSignature(cmd *protocol.PaymentCommand) (*protocol.PaymentCommand, error) {
	_, sigMsg, err := cmd.TravelRuleMetadata()
	if err != nil {
		return nil, errors.Wrap(err, "failed build travel rule metadata")
	}
	sub, err := cmd.ReceiverSubaddress(e.cfg.AddressHRP)
	if err != nil {
		return nil, err
	}
	accountID, err := e.repo.AccountIDFromSubaddress(sub)
	if err != nil {
		return nil, errors.Wrap(err, "failed resolve receiver account")
	}
	kyc, err := e.userKycData(accountID)
	if err != nil {
		return nil, err
	}
	signature := hex.EncodeToString(e.sign(sigMsg))
	return cmd.NewCommand(protocol.READY_FOR_SETTLEMENT_AS, kyc, signature), nil
}

// submitToLedger finishes a conversation both sides agreed on: the sender
// transmits the final command and submits the transfer to the ledger.
func (e *Engine) submitToLedger(ctx context.Context, txn *Transaction, cmd *protocol.PaymentCommand, _ protocol.Action) (*Transaction, error) {
	if !cmd.IsSender() {
		// the counterpart submits, nothing to do on this side
		return nil, nil
	}

	e.l.Info("Submitting transaction.",
		zap.String("reference_id", txn.ReferenceID),
		zap.Int64("amount", txn.Amount),
		zap.String("currency", txn.Currency),
	)

	if err := e.client.SendCommand(cmd, e.sign); err != nil {
		return nil, errors.Wrap(err, "failed send final command")
	}

	metadata, _, err := cmd.TravelRuleMetadata()
	if err != nil {
		return nil, err
	}
	destination, err := cmd.ReceiverAccountAddress(e.cfg.AddressHRP)
	if err != nil {
		return nil, err
	}
	recipientSignature, err := hex.DecodeString(cmd.Payment.RecipientSignature)
	if err != nil {
		return nil, errors.Wrap(err, "failed decode recipient signature")
	}

	res, err := e.ledger.SubmitP2PTransfer(ctx, offsync.P2PTransferRequest{
		DestinationAddress: destination,
		Currency:           cmd.Payment.Action.Currency,
		Amount:             cmd.Payment.Action.Amount,
		Metadata:           metadata,
		RecipientSignature: recipientSignature,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed submit p2p transfer")
	}

	txn.Sequence = &res.SequenceNumber
	txn.BlockchainVersion = &res.Version
	txn.Status = COMPLETED_TX
	ledgerSubmissionsTotal.Inc()

	e.l.Info("Submitted transaction.",
		zap.String("reference_id", txn.ReferenceID),
		zap.Int64("version", res.Version),
		zap.Int64("amount", txn.Amount),
		zap.String("currency", txn.Currency),
	)
	return txn, nil
}
