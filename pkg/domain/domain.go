// Package domain holds the small value types shared across claimd. Keeping them
// in pkg avoids import cycles between stores, services, and transport.
package domain

import (
	"encoding/hex"
	"encoding/json"

	dErrors "claimd/pkg/domain-errors"
)

// Identity is an opaque, already-authenticated caller handle. claimd never
// interprets it beyond equality; authentication happens at the transport edge.
type Identity string

func (i Identity) IsZero() bool { return i == "" }

func (i Identity) String() string { return string(i) }

// ParseIdentity validates an identity at a trust boundary.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must not be empty")
	}
	return Identity(s), nil
}

// Fingerprint is the opaque byte sequence identifying a claimed piece of data.
// Equality is raw byte equality; claimd attaches no meaning to the contents.
type Fingerprint []byte

// String renders the fingerprint in its wire form (lowercase hex).
func (f Fingerprint) String() string { return hex.EncodeToString(f) }

// Key returns the fingerprint in the form stores index by.
func (f Fingerprint) Key() string { return hex.EncodeToString(f) }

// MarshalJSON renders the fingerprint as lowercase hex rather than the
// default base64 for byte slices.
func (f Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(f))
}

func (f *Fingerprint) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*f = decoded
	return nil
}

// ParseFingerprint decodes the hex wire form used by the HTTP surface.
func ParseFingerprint(s string) (Fingerprint, error) {
	if s == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "fingerprint must not be empty")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "fingerprint must be hex encoded")
	}
	return Fingerprint(b), nil
}

// LogicalTimestamp is a monotonically non-decreasing value supplied by the
// clock collaborator (a block height in the original deployment).
type LogicalTimestamp uint64
