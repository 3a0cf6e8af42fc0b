package protocol

import (
	"bytes"
	"crypto/ed25519"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client exchanges off-chain commands with the counterpart VASP.
type Client interface {
	// ProcessInboundRequest authenticates and parses a raw inbound request
	// into a concrete command.
	ProcessInboundRequest(requestSenderAddress string, body []byte) (Command, error)

	// SendCommand signs and transmits a command. Fire-and-forget: the
	// counterpart's follow-up arrives later as a fresh inbound request.
	SendCommand(cmd Command, sign SignFunc) error
}

// HTTPClient talks to a single counterpart VASP over HTTP with JWS envelopes.
type HTTPClient struct {
	cfg        HTTPClientConfig
	httpClient *http.Client
	l          *zap.Logger
}

type HTTPClientConfig struct {
	// EntrypointURL is the counterpart's inbound command endpoint.
	EntrypointURL string

	// CounterpartPublicKey verifies inbound envelopes.
	CounterpartPublicKey ed25519.PublicKey

	// MyAddress is sent as the request sender identity.
	MyAddress string
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{},
		l:          zap.L().Named("offchain_client"),
	}
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) ProcessInboundRequest(requestSenderAddress string, body []byte) (Command, error) {
	payload, err := DeserializeJWS(body, c.cfg.CounterpartPublicKey)
	if err != nil {
		return nil, err
	}
	cmd, err := ParseRequest(payload)
	if err != nil {
		return nil, err
	}
	c.l.Debug("Inbound command parsed.",
		zap.String("sender", requestSenderAddress),
		zap.String("command_type", string(cmd.CommandType())),
		zap.String("cid", cmd.CommandID()),
	)
	return cmd, nil
}

func (c *HTTPClient) SendCommand(cmd Command, sign SignFunc) error {
	raw, err := SerializeRequest(cmd, sign)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.cfg.EntrypointURL, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "Failed new request")
	}
	req.Header.Set("Content-Type", "application/jws+json")
	req.Header.Set("X-Request-Sender-Address", c.cfg.MyAddress)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "Failed do request")
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Failed read all body")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("counterpart rejected command %s: status %d, body %q", cmd.CommandID(), resp.StatusCode, b)
	}
	return nil
}
