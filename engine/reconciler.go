package engine

import (
	"encoding/hex"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/identifier"
	"github.com/gebv/offsync/protocol"
)

// ProcessInboundRequest authenticates an inbound protocol request, merges the
// carried command into local state and returns the HTTP status with the
// signed reply envelope. The reply references the command id whenever one
// could be identified.
func (e *Engine) ProcessInboundRequest(requestSenderAddress string, body []byte) (int, []byte) {
	var cmd protocol.Command
	err := func() error {
		var err error
		cmd, err = e.client.ProcessInboundRequest(requestSenderAddress, body)
		if err != nil {
			return err
		}
		switch c := cmd.(type) {
		case *protocol.PaymentCommand:
			_, err := e.saveInboundPaymentCommand(c)
			return err
		case *protocol.FundsPullPreApprovalCommand:
			return e.saveInboundPreApprovalCommand(c)
		default:
			e.l.Info("Ignore inbound command of unknown type.",
				zap.String("command_type", string(cmd.CommandType())),
				zap.String("cid", cmd.CommandID()),
			)
			return nil
		}
	}()

	cid := ""
	commandType := "unidentified"
	if cmd != nil {
		cid = cmd.CommandID()
		commandType = string(cmd.CommandType())
	}

	if err != nil {
		inboundCommandsTotal.WithLabelValues(commandType, "rejected").Inc()
		e.l.Warn("Failed process inbound command.",
			zap.Error(err),
			zap.String("sender", requestSenderAddress),
			zap.String("cid", cid),
		)
		perr, ok := protocol.AsError(err)
		if !ok {
			perr = protocol.NewError(protocol.CodeInvalidCommand, "", err.Error())
		}
		return http.StatusBadRequest, e.reply(cid, &perr.Obj)
	}

	inboundCommandsTotal.WithLabelValues(commandType, "ok").Inc()
	return http.StatusOK, e.reply(cid, nil)
}

func (e *Engine) reply(cid string, errObj *protocol.ErrorObject) []byte {
	raw, err := protocol.SerializeReply(protocol.ReplyRequest(cid, errObj), e.sign)
	if err != nil {
		e.l.Error("Failed serialize reply.", zap.Error(err), zap.String("cid", cid))
		return nil
	}
	return raw
}

// saveInboundPaymentCommand merges an inbound payment command under the
// conversation lock: creates the transaction on first sight, treats an
// identical retry as a no-op and otherwise accepts only a legal evolution of
// the stored command.
func (e *Engine) saveInboundPaymentCommand(cmd *protocol.PaymentCommand) (*Transaction, error) {
	return e.lockForUpdate(cmd.ReferenceID(), func(txn *Transaction) (*Transaction, error) {
		if txn == nil {
			return e.newPaymentCommandTransaction(cmd, INBOUND_TX)
		}

		prior, err := protocol.PaymentFromJSON(txn.CommandJSON)
		if err != nil {
			return nil, err
		}
		if cmd.Equal(prior) {
			return nil, nil
		}
		if err := cmd.Validate(prior); err != nil {
			return nil, err
		}

		status := commandTransactionStatus(cmd, INBOUND_TX)
		if !txn.Status.Match(status) && !transactionStatusTransitionChart.Allowed(txn.Status, status) {
			return nil, protocol.NewError(protocol.CodeInvalidStatusTransition, "",
				"transaction may not move from "+string(txn.Status)+" to "+string(status))
		}

		raw, err := protocol.ToJSON(cmd)
		if err != nil {
			return nil, err
		}
		txn.CommandJSON = raw
		txn.Status = status
		return txn, nil
	})
}

// commandTransactionStatus derives the transaction status stated reachable by
// the command. Never set ad hoc elsewhere.
func commandTransactionStatus(cmd *protocol.PaymentCommand, def TransactionStatus) TransactionStatus {
	if cmd.IsBothReady() {
		return READY_TX
	}
	if cmd.IsAbort() {
		return CANCELED_TX
	}
	return def
}

func (e *Engine) newPaymentCommandTransaction(cmd *protocol.PaymentCommand, status TransactionStatus) (*Transaction, error) {
	payment := &cmd.Payment

	sourceAddress, sourceSub, err := identifier.Decode(e.cfg.AddressHRP, payment.Sender.Address)
	if err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidCommand, "payment.sender.address", err.Error())
	}
	destinationAddress, destinationSub, err := identifier.Decode(e.cfg.AddressHRP, payment.Receiver.Address)
	if err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidCommand, "payment.receiver.address", err.Error())
	}

	raw, err := protocol.ToJSON(cmd)
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		Type:                  OFFCHAIN_TX_TYPE,
		Status:                status,
		Amount:                payment.Action.Amount,
		Currency:              payment.Action.Currency,
		SourceAddress:         hex.EncodeToString(sourceAddress),
		SourceSubaddress:      hex.EncodeToString(sourceSub),
		DestinationAddress:    hex.EncodeToString(destinationAddress),
		DestinationSubaddress: hex.EncodeToString(destinationSub),
		ReferenceID:           cmd.ReferenceID(),
		CommandJSON:           raw,
	}
	txn.SourceID = e.accountIDFromSubaddress(sourceSub)
	txn.DestinationID = e.accountIDFromSubaddress(destinationSub)
	return txn, nil
}

// accountIDFromSubaddress resolves a local account id, nil when the
// subaddress is absent or belongs to the counterpart.
func (e *Engine) accountIDFromSubaddress(sub []byte) *int64 {
	if sub == nil {
		return nil
	}
	id, err := e.repo.AccountIDFromSubaddress(sub)
	if err != nil {
		if !errors.Is(err, offsync.ErrNotFound) {
			e.l.Warn("Failed resolve account from subaddress.", zap.Error(err))
		}
		return nil
	}
	return &id
}

// SaveOutboundTransaction creates a locally initiated payment conversation.
// The workflow driver picks it up on the next cycle and transmits it.
func (e *Engine) SaveOutboundTransaction(senderID int64, destinationAddress, destinationSubaddress []byte, amount int64, currency string) (*Transaction, error) {
	senderSub, err := e.repo.GenerateSubaddress(senderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed generate subaddress for account %d", senderID)
	}
	senderAddress, err := identifier.Encode(e.cfg.AddressHRP, e.cfg.VASPAddress, senderSub)
	if err != nil {
		return nil, err
	}
	receiverAddress, err := identifier.Encode(e.cfg.AddressHRP, destinationAddress, destinationSubaddress)
	if err != nil {
		return nil, err
	}
	kyc, err := e.userKycData(senderID)
	if err != nil {
		return nil, err
	}

	cmd := protocol.InitPaymentCommand(senderAddress, kyc, receiverAddress, amount, currency)
	txn, err := e.newPaymentCommandTransaction(cmd, OUTBOUND_TX)
	if err != nil {
		return nil, err
	}
	return e.lockForUpdate(cmd.ReferenceID(), func(prior *Transaction) (*Transaction, error) {
		if prior != nil {
			return nil, errors.Wrapf(offsync.ErrAlreadyExists, "transaction %s", cmd.ReferenceID())
		}
		return txn, nil
	})
}
