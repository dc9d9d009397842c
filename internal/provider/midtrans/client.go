// Package midtrans fetches provider-side transaction records from the
// payment gateway proxy.
package midtrans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

var (
	// ErrMissingData means the response had no usable "data" field.
	ErrMissingData = errors.New("provider response has no data")
	// ErrInvalidFormat means "data" was present but no record list could be found in it.
	ErrInvalidFormat = errors.New("provider data is not a list of transactions")
)

// Record is one provider-side transaction, kept as the exact JSON object the
// provider returned.
type Record struct {
	OrderID string
	Raw     datatypes.JSON
}

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw.MarshalJSON()
}

// DefaultMaxBodyBytes caps how much of a provider response is read.
const DefaultMaxBodyBytes int64 = 10 << 20

type Client struct {
	url          string
	httpClient   *http.Client
	maxBodyBytes int64
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:          url,
		httpClient:   &http.Client{Timeout: timeout},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// FetchTransactions performs a single GET against the provider endpoint and
// returns every record in the payload. There is no retry.
func (c *Client) FetchTransactions(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("provider response exceeds %d bytes", c.maxBodyBytes)
	}

	return ParsePayload(body)
}

// ParsePayload extracts records from a provider body. Accepted shapes are
// {"data": [...]} and {"data": {"transactions": [...]}}. Keys are matched
// case-sensitively.
func ParsePayload(body []byte) ([]Record, error) {
	envelope, ok := objectOf(body)
	if !ok {
		return nil, ErrMissingData
	}

	data := bytes.TrimSpace(envelope["data"])
	if isFalsy(data) {
		return nil, ErrMissingData
	}

	list := data
	if data[0] == '{' {
		wrapped, ok := objectOf(data)
		if !ok {
			return nil, ErrInvalidFormat
		}
		list = bytes.TrimSpace(wrapped["transactions"])
	}

	if len(list) == 0 || list[0] != '[' {
		return nil, ErrInvalidFormat
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(list, &elems); err != nil {
		return nil, ErrInvalidFormat
	}

	records := make([]Record, 0, len(elems))
	for _, elem := range elems {
		records = append(records, Record{
			OrderID: orderIDOf(elem),
			Raw:     datatypes.JSON(elem),
		})
	}
	return records, nil
}

// objectOf decodes raw as a JSON object, keeping member values undecoded.
func objectOf(raw []byte) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// orderIDOf returns the string order_id of an element, or "" when the element
// is not an object or order_id is not a string.
func orderIDOf(elem json.RawMessage) string {
	fields, ok := objectOf(elem)
	if !ok {
		return ""
	}
	raw, ok := fields["order_id"]
	if !ok {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// isFalsy mirrors the provider proxy's own notion of an empty value:
// absent, null, false, zero, or the empty string.
func isFalsy(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	switch string(raw) {
	case "null", "false", `""`:
		return true
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil && f == 0 {
		return true
	}
	return false
}
