package engine

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/gebv/offsync"
	"github.com/gebv/offsync/identifier"
	"github.com/gebv/offsync/protocol"
)

const (
	testHRP       = "tdm"
	testAccountID = int64(1)
)

var (
	testLocalVASP  = bytes.Repeat([]byte{0x11}, identifier.AddressLength)
	testRemoteVASP = bytes.Repeat([]byte{0x22}, identifier.AddressLength)
	testLocalSub   = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	testRemoteSub  = []byte{8, 7, 6, 5, 4, 3, 2, 1}
)

// testRepo is a map-backed Repository for engine tests.
type testRepo struct {
	mu           sync.Mutex
	lastTxID     int64
	lastSub      uint64
	transactions map[string]*Transaction
	preapprovals map[string]*FundsPullPreApproval
	subaddresses map[string]int64
}

var _ Repository = (*testRepo)(nil)

func newTestRepo() *testRepo {
	return &testRepo{
		transactions: make(map[string]*Transaction),
		preapprovals: make(map[string]*FundsPullPreApproval),
		subaddresses: make(map[string]int64),
	}
}

func (r *testRepo) GetTransaction(referenceID string) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.transactions[referenceID]
	if !ok {
		return nil, errors.Wrapf(offsync.ErrNotFound, "transaction %s", referenceID)
	}
	c := *txn
	return &c, nil
}

func (r *testRepo) SaveTransaction(txn *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.TransactionID == 0 {
		if err := txn.BeforeInsert(); err != nil {
			return err
		}
		r.lastTxID++
		txn.TransactionID = r.lastTxID
	} else {
		if err := txn.BeforeUpdate(); err != nil {
			return err
		}
	}
	c := *txn
	r.transactions[txn.ReferenceID] = &c
	return nil
}

func (r *testRepo) TransactionsByStatus(status TransactionStatus) ([]*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*Transaction
	for _, txn := range r.transactions {
		if txn.Status.Match(status) {
			c := *txn
			res = append(res, &c)
		}
	}
	return res, nil
}

func (r *testRepo) TransactionsByAccount(accountID int64) ([]*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*Transaction
	for _, txn := range r.transactions {
		if (txn.SourceID != nil && *txn.SourceID == accountID) ||
			(txn.DestinationID != nil && *txn.DestinationID == accountID) {
			c := *txn
			res = append(res, &c)
		}
	}
	return res, nil
}

func (r *testRepo) GetPreApproval(id string) (*FundsPullPreApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.preapprovals[id]
	if !ok {
		return nil, errors.Wrapf(offsync.ErrNotFound, "preapproval %s", id)
	}
	c := *rec
	return &c, nil
}

func (r *testRepo) SavePreApproval(rec *FundsPullPreApproval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.preapprovals[rec.FundsPullPreApprovalID]; ok {
		if err := rec.BeforeUpdate(); err != nil {
			return err
		}
	} else {
		if err := rec.BeforeInsert(); err != nil {
			return err
		}
	}
	c := *rec
	r.preapprovals[rec.FundsPullPreApprovalID] = &c
	return nil
}

func (r *testRepo) PreApprovalsBySentStatus(sent bool) ([]*FundsPullPreApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*FundsPullPreApproval
	for _, rec := range r.preapprovals {
		if rec.Sent == sent {
			c := *rec
			res = append(res, &c)
		}
	}
	return res, nil
}

func (r *testRepo) PreApprovalsByAccount(accountID int64) ([]*FundsPullPreApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*FundsPullPreApproval
	for _, rec := range r.preapprovals {
		if rec.AccountID == accountID {
			c := *rec
			res = append(res, &c)
		}
	}
	return res, nil
}

func (r *testRepo) GenerateSubaddress(accountID int64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSub++
	sub := make([]byte, identifier.SubaddressLength)
	binary.BigEndian.PutUint64(sub, r.lastSub)
	r.subaddresses[hex.EncodeToString(sub)] = accountID
	return sub, nil
}

func (r *testRepo) AccountIDFromSubaddress(sub []byte) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.subaddresses[hex.EncodeToString(sub)]
	if !ok {
		return 0, errors.Wrapf(offsync.ErrNotFound, "subaddress %x", sub)
	}
	return id, nil
}

func (r *testRepo) registerSubaddress(sub []byte, accountID int64) {
	r.mu.Lock()
	r.subaddresses[hex.EncodeToString(sub)] = accountID
	r.mu.Unlock()
}

// fakeClient verifies and parses inbound envelopes like the real transport
// and records outbound commands instead of sending them.
type fakeClient struct {
	mu      sync.Mutex
	pub     ed25519.PublicKey
	sent    []protocol.Command
	sendErr func(cmd protocol.Command) error
}

var _ protocol.Client = (*fakeClient)(nil)

func (c *fakeClient) ProcessInboundRequest(_ string, body []byte) (protocol.Command, error) {
	payload, err := protocol.DeserializeJWS(body, c.pub)
	if err != nil {
		return nil, err
	}
	return protocol.ParseRequest(payload)
}

func (c *fakeClient) SendCommand(cmd protocol.Command, _ protocol.SignFunc) error {
	if c.sendErr != nil {
		if err := c.sendErr(cmd); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.sent = append(c.sent, cmd)
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) sentCommands() []protocol.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Command{}, c.sent...)
}

type fakeLedger struct {
	mu    sync.Mutex
	calls []offsync.P2PTransferRequest
	err   error
}

var _ offsync.LedgerClient = (*fakeLedger)(nil)

func (l *fakeLedger) SubmitP2PTransfer(_ context.Context, req offsync.P2PTransferRequest) (*offsync.P2PTransferResult, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.calls = append(l.calls, req)
	l.mu.Unlock()
	return &offsync.P2PTransferResult{SequenceNumber: 7, Version: 42}, nil
}

type fakeKyc struct{}

func (fakeKyc) GetUserKycInfo(int64) (offsync.KycData, error) {
	return offsync.KycData{Type: "individual", GivenName: "Alice", Surname: "Lee", Dob: "1990-01-01"}, nil
}

type testEnv struct {
	e          *Engine
	repo       *testRepo
	client     *fakeClient
	ledger     *fakeLedger
	localPub   ed25519.PublicKey
	remoteSign protocol.SignFunc
}

func newTestEnv(t *testing.T) *testEnv {
	localPub, localPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	remotePub, remotePriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	repo := newTestRepo()
	repo.registerSubaddress(testLocalSub, testAccountID)

	client := &fakeClient{pub: remotePub}
	ledger := &fakeLedger{}

	e := New(Config{
		VASPAddress:          testLocalVASP,
		AddressHRP:           testHRP,
		CompliancePrivateKey: localPriv,
	}, repo, client, ledger, fakeKyc{}, nil)

	return &testEnv{
		e:          e,
		repo:       repo,
		client:     client,
		ledger:     ledger,
		localPub:   localPub,
		remoteSign: func(msg []byte) []byte { return ed25519.Sign(remotePriv, msg) },
	}
}

func (env *testEnv) localAddress(t *testing.T) string {
	addr, err := identifier.Encode(testHRP, testLocalVASP, testLocalSub)
	require.NoError(t, err)
	return addr
}

func (env *testEnv) remoteAddress(t *testing.T) string {
	addr, err := identifier.Encode(testHRP, testRemoteVASP, testRemoteSub)
	require.NoError(t, err)
	return addr
}

// inbound serializes a command the way the counterpart would and feeds it to
// the engine.
func (env *testEnv) inbound(t *testing.T, cmd protocol.Command) (int, []byte) {
	body, err := protocol.SerializeRequest(cmd, env.remoteSign)
	require.NoError(t, err)
	return env.e.ProcessInboundRequest("remote-vasp", body)
}
