// Package identifier encodes on-chain account addresses together with an
// optional subaddress into a single textual account identifier exchanged in
// off-chain commands.
package identifier

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const (
	version = "1"

	AddressLength    = 16
	SubaddressLength = 8
)

var zeroSubaddress = make([]byte, SubaddressLength)

// Encode builds an account identifier from the on-chain address and an
// optional subaddress. A nil subaddress encodes as all zero bytes.
func Encode(hrp string, onchain []byte, sub []byte) (string, error) {
	if hrp == "" {
		return "", errors.New("empty hrp")
	}
	if len(onchain) != AddressLength {
		return "", errors.Errorf("onchain address must be %d bytes, got %d", AddressLength, len(onchain))
	}
	if sub == nil {
		sub = zeroSubaddress
	}
	if len(sub) != SubaddressLength {
		return "", errors.Errorf("subaddress must be %d bytes, got %d", SubaddressLength, len(sub))
	}
	return hrp + "1" + version + hex.EncodeToString(onchain) + hex.EncodeToString(sub), nil
}

// Decode splits an account identifier back into the on-chain address and the
// subaddress. The returned subaddress is nil if it was all zero bytes.
func Decode(hrp string, encoded string) (onchain []byte, sub []byte, err error) {
	prefix := hrp + "1"
	if !strings.HasPrefix(encoded, prefix) {
		return nil, nil, errors.Errorf("account identifier %q: expected hrp %q", encoded, hrp)
	}
	payload := strings.TrimPrefix(encoded, prefix)
	if len(payload) < 1 || payload[:1] != version {
		return nil, nil, errors.Errorf("account identifier %q: unknown version", encoded)
	}
	raw, err := hex.DecodeString(payload[1:])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "account identifier %q", encoded)
	}
	if len(raw) != AddressLength+SubaddressLength {
		return nil, nil, errors.Errorf("account identifier %q: bad payload length %d", encoded, len(raw))
	}
	onchain = raw[:AddressLength]
	sub = raw[AddressLength:]
	if string(sub) == string(zeroSubaddress) {
		sub = nil
	}
	return onchain, sub, nil
}
