package engine

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gebv/offsync/protocol"
)

func decodeReply(t *testing.T, env *testEnv, body []byte) *protocol.CommandResponseObject {
	payload, err := protocol.DeserializeJWS(body, env.localPub)
	require.NoError(t, err)
	var resp protocol.CommandResponseObject
	require.NoError(t, json.Unmarshal(payload, &resp))
	return &resp
}

func remoteInitiatedPayment(t *testing.T, env *testEnv, amount int64) *protocol.PaymentCommand {
	kyc := &protocol.KycDataObject{Type: "individual", PayloadVersion: 1, GivenName: "Bob"}
	return protocol.InitPaymentCommand(env.remoteAddress(t), kyc, env.localAddress(t), amount, "XUS")
}

func TestProcessInboundRequest_createsTransaction(t *testing.T) {
	env := newTestEnv(t)
	cmd := remoteInitiatedPayment(t, env, 250)

	code, body := env.inbound(t, cmd)
	require.Equal(t, http.StatusOK, code)

	resp := decodeReply(t, env, body)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, cmd.CID, resp.CID)

	txn, err := env.repo.GetTransaction(cmd.ReferenceID())
	require.NoError(t, err)
	assert.Equal(t, INBOUND_TX, txn.Status)
	assert.Equal(t, OFFCHAIN_TX_TYPE, txn.Type)
	assert.EqualValues(t, 250, txn.Amount)
	assert.Equal(t, "XUS", txn.Currency)
	assert.Nil(t, txn.SourceID, "the sender is an account of the counterpart")
	require.NotNil(t, txn.DestinationID)
	assert.Equal(t, testAccountID, *txn.DestinationID)
}

func TestProcessInboundRequest_retryIsNoop(t *testing.T) {
	env := newTestEnv(t)
	cmd := remoteInitiatedPayment(t, env, 100)

	code, _ := env.inbound(t, cmd)
	require.Equal(t, http.StatusOK, code)
	first, err := env.repo.GetTransaction(cmd.ReferenceID())
	require.NoError(t, err)

	code, body := env.inbound(t, cmd)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", decodeReply(t, env, body).Status)

	second, err := env.repo.GetTransaction(cmd.ReferenceID())
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.CommandJSON, second.CommandJSON)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "retry commits nothing")
}

func TestProcessInboundRequest_illegalEvolutionRejected(t *testing.T) {
	env := newTestEnv(t)
	cmd := remoteInitiatedPayment(t, env, 100)
	code, _ := env.inbound(t, cmd)
	require.Equal(t, http.StatusOK, code)
	before, err := env.repo.GetTransaction(cmd.ReferenceID())
	require.NoError(t, err)

	// the counterpart tries to bump the amount mid-conversation
	next := *cmd
	next.CID = uuid.New().String()
	next.Payment.Action.Amount = 9000

	code, body := env.inbound(t, &next)
	assert.Equal(t, http.StatusBadRequest, code)
	resp := decodeReply(t, env, body)
	assert.Equal(t, "failure", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeInvalidCommand, resp.Error.Code)

	after, err := env.repo.GetTransaction(cmd.ReferenceID())
	require.NoError(t, err)
	assert.Equal(t, before.CommandJSON, after.CommandJSON, "rejected request changes nothing")
	assert.Equal(t, before.Status, after.Status)
}

func TestProcessInboundRequest_statusRegressionRejected(t *testing.T) {
	env := newTestEnv(t)
	cmd := remoteInitiatedPayment(t, env, 100)
	code, _ := env.inbound(t, cmd)
	require.Equal(t, http.StatusOK, code)

	next := *cmd
	next.CID = uuid.New().String()
	next.Payment.Sender.Status.Status = protocol.NONE_AS

	code, body := env.inbound(t, &next)
	assert.Equal(t, http.StatusBadRequest, code)
	resp := decodeReply(t, env, body)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeInvalidStatusTransition, resp.Error.Code)
}

func TestProcessInboundRequest_canceledIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	cmd := remoteInitiatedPayment(t, env, 100)
	code, _ := env.inbound(t, cmd)
	require.Equal(t, http.StatusOK, code)

	aborted := *cmd
	aborted.CID = uuid.New().String()
	aborted.Payment.Sender.Status.Status = protocol.ABORT_AS

	code, _ = env.inbound(t, &aborted)
	require.Equal(t, http.StatusOK, code)
	txn, err := env.repo.GetTransaction(cmd.ReferenceID())
	require.NoError(t, err)
	require.Equal(t, CANCELED_TX, txn.Status)

	// the counterpart tries to revive the conversation as settled
	revived := aborted
	revived.CID = uuid.New().String()
	revived.Payment.Sender.Status.Status = protocol.READY_FOR_SETTLEMENT_AS
	revived.Payment.Receiver.Status.Status = protocol.READY_FOR_SETTLEMENT_AS

	code, body := env.inbound(t, &revived)
	assert.Equal(t, http.StatusBadRequest, code)
	resp := decodeReply(t, env, body)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeInvalidStatusTransition, resp.Error.Code)

	after, err := env.repo.GetTransaction(cmd.ReferenceID())
	require.NoError(t, err)
	assert.Equal(t, CANCELED_TX, after.Status, "canceled conversations never resume")
}

func TestProcessInboundRequest_unknownCommandTypeAcknowledged(t *testing.T) {
	env := newTestEnv(t)

	payload, err := json.Marshal(protocol.CommandRequestObject{
		CID:         "cid-unknown",
		CommandType: "BrandNewCommand",
		Command:     json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	body := protocol.SerializeJWS(payload, env.remoteSign)

	code, reply := env.e.ProcessInboundRequest("remote-vasp", body)
	assert.Equal(t, http.StatusOK, code)
	resp := decodeReply(t, env, reply)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "cid-unknown", resp.CID)
}

func TestProcessInboundRequest_malformedBody(t *testing.T) {
	env := newTestEnv(t)

	code, reply := env.e.ProcessInboundRequest("remote-vasp", []byte("garbage"))
	assert.Equal(t, http.StatusBadRequest, code)
	resp := decodeReply(t, env, reply)
	assert.Equal(t, "failure", resp.Status)
	assert.Empty(t, resp.CID, "no command could be identified")
}

func TestProcessInboundRequest_badSignature(t *testing.T) {
	env := newTestEnv(t)
	cmd := remoteInitiatedPayment(t, env, 100)

	// signed with the local key instead of the counterpart's
	body, err := protocol.SerializeRequest(cmd, env.e.sign)
	require.NoError(t, err)

	code, reply := env.e.ProcessInboundRequest("remote-vasp", body)
	assert.Equal(t, http.StatusBadRequest, code)
	resp := decodeReply(t, env, reply)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeInvalidSignature, resp.Error.Code)

	_, err = env.repo.GetTransaction(cmd.ReferenceID())
	assert.Error(t, err, "nothing persisted")
}

func TestSaveOutboundTransaction(t *testing.T) {
	env := newTestEnv(t)

	txn, err := env.e.SaveOutboundTransaction(testAccountID, testRemoteVASP, testRemoteSub, 500, "XUS")
	require.NoError(t, err)

	assert.Equal(t, OUTBOUND_TX, txn.Status)
	assert.EqualValues(t, 500, txn.Amount)
	require.NotNil(t, txn.SourceID)
	assert.Equal(t, testAccountID, *txn.SourceID)
	assert.Nil(t, txn.DestinationID, "the receiver is an account of the counterpart")

	cmd, err := protocol.PaymentFromJSON(txn.CommandJSON)
	require.NoError(t, err)
	assert.True(t, cmd.IsSender())
	assert.False(t, cmd.IsInbound())
	assert.Equal(t, protocol.NEEDS_KYC_DATA_AS, cmd.Payment.Sender.Status.Status)
	assert.NotNil(t, cmd.Payment.Sender.KycData, "kyc data shared up front")
	assert.Equal(t, env.remoteAddress(t), cmd.Payment.Receiver.Address)
}
