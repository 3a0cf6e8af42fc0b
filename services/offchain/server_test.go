package offchain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/engine"
	"github.com/gebv/offsync/identifier"
	"github.com/gebv/offsync/protocol"
	"github.com/gebv/offsync/storage"
)

type stubClient struct{}

func (stubClient) ProcessInboundRequest(string, []byte) (protocol.Command, error) {
	return nil, protocol.ErrMalformedCommand
}
func (stubClient) SendCommand(protocol.Command, protocol.SignFunc) error { return nil }

type stubLedger struct{}

func (stubLedger) SubmitP2PTransfer(context.Context, offsync.P2PTransferRequest) (*offsync.P2PTransferResult, error) {
	return &offsync.P2PTransferResult{}, nil
}

type stubKyc struct{}

func (stubKyc) GetUserKycInfo(int64) (offsync.KycData, error) {
	return offsync.KycData{Type: "individual", GivenName: "Alice"}, nil
}

func newTestServer(t *testing.T) (*echo.Echo, *storage.Memory) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	repo := storage.NewMemory()
	eng := engine.New(engine.Config{
		VASPAddress:          bytes.Repeat([]byte{0x11}, identifier.AddressLength),
		AddressHRP:           "tdm",
		CompliancePrivateKey: priv,
	}, repo, stubClient{}, stubLedger{}, stubKyc{}, nil)

	e := echo.New()
	NewServer(eng).Setup(e)
	return e, repo
}

func doJSON(e *echo.Echo, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCommandHandler_missingSenderHeader(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v2/command", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandHandler_rejectedBody(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v2/command", bytes.NewReader([]byte("garbage")))
	req.Header.Set("X-Request-Sender-Address", "remote-vasp")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/jws+json", rec.Header().Get(echo.HeaderContentType))
}

func TestInitiatePaymentHandler(t *testing.T) {
	e, repo := newTestServer(t)

	destination := bytes.Repeat([]byte{0x22}, identifier.AddressLength)
	rec := doJSON(e, http.MethodPost, "/offchain/query/payments/1", initiatePaymentRequest{
		DestinationAddress:    hex.EncodeToString(destination),
		DestinationSubaddress: hex.EncodeToString([]byte{8, 7, 6, 5, 4, 3, 2, 1}),
		Amount:                100,
		Currency:              "XUS",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ReferenceID string `json:"reference_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	txn, err := repo.GetTransaction(created.ReferenceID)
	require.NoError(t, err)
	assert.Equal(t, engine.OUTBOUND_TX, txn.Status)

	// the stored command is readable back
	rec = doJSON(e, http.MethodGet, "/offchain/payment/"+created.ReferenceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = protocol.PaymentFromJSON(rec.Body.String())
	assert.NoError(t, err)
}

func TestInitiatePaymentHandler_badInput(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/offchain/query/payments/not-a-number", initiatePaymentRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/offchain/query/payments/1", initiatePaymentRequest{
		DestinationAddress: "zz",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPaymentHandler_notFound(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/offchain/payment/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreApprovalHandlers(t *testing.T) {
	e, repo := newTestServer(t)

	expiration := time.Now().Add(24 * time.Hour).Unix()
	rec := doJSON(e, http.MethodPost, "/offchain/preapprovals", establishPreApprovalRequest{
		AccountID:              1,
		BillerAddress:          "tdm1biller",
		FundsPullPreApprovalID: "fppa-1",
		Type:                   protocol.PreApprovalTypeConsent,
		ExpirationTimestamp:    expiration,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored, err := repo.GetPreApproval("fppa-1")
	require.NoError(t, err)
	assert.Equal(t, protocol.VALID_PA, stored.Status)

	// duplicate id
	rec = doJSON(e, http.MethodPost, "/offchain/preapprovals", establishPreApprovalRequest{
		AccountID:              1,
		BillerAddress:          "tdm1biller",
		FundsPullPreApprovalID: "fppa-1",
		Type:                   protocol.PreApprovalTypeConsent,
		ExpirationTimestamp:    expiration,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// expired
	rec = doJSON(e, http.MethodPost, "/offchain/preapprovals", establishPreApprovalRequest{
		AccountID:              1,
		BillerAddress:          "tdm1biller",
		FundsPullPreApprovalID: "fppa-2",
		Type:                   protocol.PreApprovalTypeConsent,
		ExpirationTimestamp:    time.Now().Add(-time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// approve is only legal for pending inbound requests
	rec = doJSON(e, http.MethodPut, "/offchain/preapprovals/fppa-1", approvePreApprovalRequest{Status: protocol.VALID_PA})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPut, "/offchain/preapprovals/missing", approvePreApprovalRequest{Status: protocol.VALID_PA})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodGet, "/offchain/preapprovals/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		PreApprovals []*engine.FundsPullPreApproval `json:"preapprovals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.PreApprovals, 1)
}

func TestListPaymentsHandler(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/offchain/payments/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Commands []string `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Commands)
}
