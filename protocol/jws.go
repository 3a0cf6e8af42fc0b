package protocol

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// CommandRequestObject is the envelope payload of an inbound or outbound
// command exchange.
type CommandRequestObject struct {
	CID         string          `json:"cid"`
	CommandType CommandType     `json:"command_type"`
	Command     json.RawMessage `json:"command"`
}

// CommandResponseObject is the envelope payload of a reply.
type CommandResponseObject struct {
	Status string       `json:"status"`
	CID    string       `json:"cid,omitempty"`
	Error  *ErrorObject `json:"error,omitempty"`
}

// ReplyRequest builds the reply to a command exchange. A nil err produces a
// success reply; cid may be empty when no command could be identified.
func ReplyRequest(cid string, errObj *ErrorObject) *CommandResponseObject {
	resp := &CommandResponseObject{Status: "success", CID: cid}
	if errObj != nil {
		resp.Status = "failure"
		resp.Error = errObj
	}
	return resp
}

var jwsHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"EdDSA"}`))

// SerializeJWS wraps a JSON payload into a compact EdDSA JWS.
func SerializeJWS(payload []byte, sign SignFunc) []byte {
	body := base64.RawURLEncoding.EncodeToString(payload)
	signingInput := jwsHeader + "." + body
	sig := base64.RawURLEncoding.EncodeToString(sign([]byte(signingInput)))
	return []byte(signingInput + "." + sig)
}

// DeserializeJWS verifies a compact JWS with the sender's public key and
// returns the payload.
func DeserializeJWS(raw []byte, key ed25519.PublicKey) ([]byte, error) {
	parts := strings.Split(string(raw), ".")
	if len(parts) != 3 {
		return nil, errors.Wrap(ErrMalformedCommand, "jws must have 3 parts")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errors.Wrap(ErrMalformedCommand, "jws payload is not base64url")
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, errors.Wrap(ErrMalformedCommand, "jws signature is not base64url")
	}
	if !ed25519.Verify(key, []byte(parts[0]+"."+parts[1]), sig) {
		return nil, NewError(CodeInvalidSignature, "", "jws signature verification failed")
	}
	return payload, nil
}

// SerializeReply signs a reply envelope.
func SerializeReply(resp *CommandResponseObject, sign SignFunc) ([]byte, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshal reply")
	}
	return SerializeJWS(raw, sign), nil
}

// SerializeRequest signs a command wrapped into a request envelope.
func SerializeRequest(cmd Command, sign SignFunc) ([]byte, error) {
	rawCmd, err := json.Marshal(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshal command")
	}
	req := CommandRequestObject{
		CID:         cmd.CommandID(),
		CommandType: cmd.CommandType(),
		Command:     rawCmd,
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshal request")
	}
	return SerializeJWS(raw, sign), nil
}

// ParseRequest decodes a verified envelope payload into the concrete command
// kind. Commands of unknown types are returned as *UnknownCommand.
func ParseRequest(payload []byte) (Command, error) {
	var req CommandRequestObject
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, errors.Wrap(ErrMalformedCommand, err.Error())
	}
	switch req.CommandType {
	case PAYMENT_CMD:
		cmd, err := PaymentFromJSON(string(req.Command))
		if err != nil {
			return nil, err
		}
		cmd.CID = req.CID
		cmd.Inbound = true
		// my_actor_address arrives pointing at the counterpart's actor,
		// flip it to the local one.
		switch cmd.MyActorAddress {
		case cmd.Payment.Sender.Address:
			cmd.MyActorAddress = cmd.Payment.Receiver.Address
		case cmd.Payment.Receiver.Address:
			cmd.MyActorAddress = cmd.Payment.Sender.Address
		default:
			return nil, NewError(CodeInvalidCommand, "my_actor_address", "my_actor_address matches neither actor")
		}
		return cmd, nil
	case PREAPPROVAL_CMD:
		cmd, err := PreApprovalFromJSON(string(req.Command))
		if err != nil {
			return nil, err
		}
		cmd.CID = req.CID
		switch cmd.MyActorAddress {
		case cmd.FundsPullPreApproval.Address:
			cmd.MyActorAddress = cmd.FundsPullPreApproval.BillerAddress
		case cmd.FundsPullPreApproval.BillerAddress:
			cmd.MyActorAddress = cmd.FundsPullPreApproval.Address
		default:
			return nil, NewError(CodeInvalidCommand, "my_actor_address", "my_actor_address matches neither actor")
		}
		return cmd, nil
	default:
		return &UnknownCommand{CID: req.CID, Type: req.CommandType}, nil
	}
}
