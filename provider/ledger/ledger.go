// Package ledger submits settlement transactions to the ledger node over its
// HTTP API.
package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gebv/offsync"
)

type Config struct {
	EntrypointURL string
}

type Provider struct {
	cfg        Config
	httpClient *http.Client
	l          *zap.Logger
}

var _ offsync.LedgerClient = (*Provider)(nil)

func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{},
		l:          zap.L().Named("ledger_provider"),
	}
}

type submitRequest struct {
	Destination        string `json:"destination"`
	Currency           string `json:"currency"`
	Amount             int64  `json:"amount"`
	Metadata           string `json:"metadata"`
	RecipientSignature string `json:"recipient_signature"`
}

type submitResponse struct {
	SequenceNumber int64 `json:"sequence_number"`
	Version        int64 `json:"version"`
}

func (p *Provider) SubmitP2PTransfer(ctx context.Context, in offsync.P2PTransferRequest) (*offsync.P2PTransferResult, error) {
	body, err := json.Marshal(submitRequest{
		Destination:        hex.EncodeToString(in.DestinationAddress),
		Currency:           in.Currency,
		Amount:             in.Amount,
		Metadata:           hex.EncodeToString(in.Metadata),
		RecipientSignature: hex.EncodeToString(in.RecipientSignature),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.cfg.EntrypointURL+"/v1/transactions/p2p", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "Failed new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Failed do request")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "Failed read all body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("ledger rejected p2p transfer: status %d, body %q", resp.StatusCode, b)
	}

	var out submitResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrap(err, "Failed unmarshal")
	}

	p.l.Info("Submitted p2p transfer.",
		zap.Int64("amount", in.Amount),
		zap.String("currency", in.Currency),
		zap.Int64("version", out.Version),
	)
	return &offsync.P2PTransferResult{
		SequenceNumber: out.SequenceNumber,
		Version:        out.Version,
	}, nil
}
