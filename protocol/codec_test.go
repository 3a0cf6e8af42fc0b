package protocol

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentFromJSON(t *testing.T) {
	cmd := InitPaymentCommand(testSenderAddress, testKyc(), testReceiverAddress, 100, "XUS")
	raw, err := ToJSON(cmd)
	require.NoError(t, err)

	decoded, err := PaymentFromJSON(raw)
	require.NoError(t, err)
	assert.True(t, cmd.Equal(decoded))
}

func TestPaymentFromJSON_malformed(t *testing.T) {
	_, err := PaymentFromJSON("{not json")
	assert.True(t, errors.Is(err, ErrMalformedCommand))

	_, err = PaymentFromJSON(`{"payment":{}}`)
	assert.True(t, errors.Is(err, ErrMalformedCommand), "missing reference_id")
}

func TestPreApprovalFromJSON(t *testing.T) {
	cmd := NewPreApprovalCommand(testSenderAddress, PreApprovalObject{
		FundsPullPreApprovalID: "fppa-1",
		Address:                testSenderAddress,
		BillerAddress:          testReceiverAddress,
		Scope: PreApprovalScopeObject{
			Type:                PreApprovalTypeConsent,
			ExpirationTimestamp: 1893456000,
		},
		Status: PENDING_PA,
	})
	raw, err := ToJSON(cmd)
	require.NoError(t, err)

	decoded, err := PreApprovalFromJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, cmd.CID, decoded.CID)
	assert.Equal(t, "fppa-1", decoded.ReferenceID())
	assert.Equal(t, PENDING_PA, decoded.FundsPullPreApproval.Status)

	_, err = PreApprovalFromJSON(`{"funds_pull_pre_approval":{}}`)
	assert.True(t, errors.Is(err, ErrMalformedCommand))
}
