package lnurl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/sats"
)

const (
	statusError     = "ERROR"
	plainTextMarker = "text/plain"
)

// maxMsatFloat is 2^63; float bounds outside [-2^63, 2^63) do not fit int64.
const maxMsatFloat = 1 << 63

// Msat is a millisatoshi amount. Some LNURL servers encode sendable bounds as
// JSON strings instead of numbers; both forms are accepted.
type Msat int64

func (m *Msat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" {
		*m = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("msat value %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < -maxMsatFloat || f >= maxMsatFloat {
			return fmt.Errorf("msat value %q is not an int64 integer", s)
		}
		n = int64(f)
	}
	*m = Msat(n)
	return nil
}

// PayMetadata is the body of the well-known lookup.
type PayMetadata struct {
	Callback    string          `json:"callback"`
	MinSendable *Msat           `json:"minSendable,omitempty"`
	MaxSendable *Msat           `json:"maxSendable,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Tag         string          `json:"tag,omitempty"`
	Status      string          `json:"status,omitempty"`
	Reason      string          `json:"reason,omitempty"`
}

// Rejected reports whether the service answered with status ERROR.
func (m *PayMetadata) Rejected() bool { return isErrorStatus(m.Status) }

// Bounds converts the sendable range to sats, using fallback for absent sides.
func (m *PayMetadata) Bounds(fallback sats.Bounds) sats.Bounds {
	return sats.BoundsFromMillisats(msatPtr(m.MinSendable), msatPtr(m.MaxSendable), fallback)
}

// Description returns the first text/plain metadata entry, or nil.
func (m *PayMetadata) Description() *string {
	return plainTextDescription(m.Metadata)
}

func isErrorStatus(s string) bool { return strings.EqualFold(s, statusError) }

func msatPtr(m *Msat) *int64 {
	if m == nil {
		return nil
	}
	v := int64(*m)
	return &v
}

// invoiceResponse is the body of the callback request.
type invoiceResponse struct {
	PR            string          `json:"pr"`
	SuccessAction json.RawMessage `json:"successAction,omitempty"`
	Status        string          `json:"status,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// Invoice is the result of a successful LNURL-pay exchange.
type Invoice struct {
	PaymentRequest   string          `json:"paymentRequest"`
	AmountSats       int64           `json:"amountSats"`
	RecipientAddress string          `json:"recipientAddress"`
	Description      *string         `json:"description"`
	SuccessAction    json.RawMessage `json:"successAction"`
}

// plainTextDescription accepts either a JSON string holding the metadata
// array or the array itself. Malformed metadata yields nil.
func plainTextDescription(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil
		}
		raw = bytes.TrimSpace([]byte(encoded))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	for _, e := range entries {
		var pair []json.RawMessage
		if err := json.Unmarshal(e, &pair); err != nil || len(pair) < 2 {
			continue
		}
		var typ string
		if err := json.Unmarshal(pair[0], &typ); err != nil || typ != plainTextMarker {
			continue
		}
		var val string
		if err := json.Unmarshal(pair[1], &val); err != nil {
			continue
		}
		return &val
	}
	return nil
}
