package billing

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSnapshot is returned when a snapshot cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid bill snapshot")

// MarshalSnapshot serialises the normalised bill as JSON. This is the form
// stored next to an invoice.
func MarshalSnapshot(bill BillInput) ([]byte, error) {
	return json.Marshal(bill.Normalized())
}

// UnmarshalSnapshot parses a JSON snapshot.
func UnmarshalSnapshot(raw []byte) (BillInput, error) {
	var bill BillInput
	if err := json.Unmarshal(raw, &bill); err != nil {
		return BillInput{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return bill, nil
}

// EncodeSnapshot returns the portable base64(JSON) form used in share links.
func EncodeSnapshot(bill BillInput) (string, error) {
	raw, err := MarshalSnapshot(bill)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// EncodeSnapshotJSON wraps an already-serialised JSON snapshot as a share param.
func EncodeSnapshotJSON(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeSnapshot reverses EncodeSnapshot. URL-safe and unpadded input is accepted
// since share params often pass through query strings.
func DecodeSnapshot(param string) (BillInput, error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return BillInput{}, fmt.Errorf("%w: empty", ErrInvalidSnapshot)
	}
	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		raw, err = enc.DecodeString(param)
		if err == nil {
			break
		}
	}
	if err != nil {
		return BillInput{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return UnmarshalSnapshot(raw)
}
