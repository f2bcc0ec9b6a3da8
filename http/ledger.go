package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"pricewatch"
)

// DefaultPublishTimeout bounds one webhook delivery.
const DefaultPublishTimeout = 30 * time.Second

// signatureHeader carries the HMAC-SHA256 signature of the request body
// when the sink is configured with a shared secret.
const signatureHeader = "X-Pricewatch-Signature"

// Ensure SheetSink implements pricewatch.LedgerSink at compile time.
var _ pricewatch.LedgerSink = (*SheetSink)(nil)

// SheetSink publishes grids to a spreadsheet webhook (typically an Apps
// Script endpoint bound to a Google Sheet). The receiving script owns the
// spreadsheet API; the sink only ships the replacement payload.
type SheetSink struct {
	url     string
	secret  string
	formats []pricewatch.FormatRegion
	client  *http.Client
	timeout time.Duration
}

// sheetPayload is the wire format the receiving script consumes: clear the
// sheet, write values starting at range, then apply the format regions.
type sheetPayload struct {
	Clear   bool                      `json:"clear"`
	Range   string                    `json:"range"`
	Values  [][]string                `json:"values"`
	Formats []pricewatch.FormatRegion `json:"formats,omitempty"`
}

// SinkOption configures a SheetSink.
type SinkOption func(*SheetSink)

// WithSecret enables HMAC-SHA256 signing of every payload.
func WithSecret(secret string) SinkOption {
	return func(s *SheetSink) {
		s.secret = secret
	}
}

// WithFormats overrides the format regions sent with every publish.
// Defaults to pricewatch.DefaultFormatRegions.
func WithFormats(regions []pricewatch.FormatRegion) SinkOption {
	return func(s *SheetSink) {
		s.formats = regions
	}
}

// WithSinkClient supplies a custom HTTP client.
func WithSinkClient(client *http.Client) SinkOption {
	return func(s *SheetSink) {
		s.client = client
	}
}

// WithPublishTimeout sets the timeout for one delivery.
// Defaults to DefaultPublishTimeout (30s) if not specified.
func WithPublishTimeout(d time.Duration) SinkOption {
	return func(s *SheetSink) {
		s.timeout = d
	}
}

// NewSheetSink creates a SheetSink posting to the given webhook URL.
func NewSheetSink(url string, opts ...SinkOption) *SheetSink {
	s := &SheetSink{
		url:     url,
		formats: pricewatch.DefaultFormatRegions(),
		timeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{
			Timeout: s.timeout,
		}
	}

	return s
}

// Publish replaces the sheet contents with the grid.
func (s *SheetSink) Publish(ctx context.Context, grid *pricewatch.Grid) error {
	if err := grid.Validate(); err != nil {
		return err
	}

	values := make([][]string, 0, len(grid.Rows)+1)
	values = append(values, grid.Header)
	values = append(values, grid.Rows...)

	body, err := json.Marshal(sheetPayload{
		Clear:   true,
		Range:   "A1",
		Values:  values,
		Formats: s.formats,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if s.secret != "" {
		mac := hmac.New(sha256.New, []byte(s.secret))
		mac.Write(body)
		req.Header.Set(signatureHeader, "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pricewatch.Errorf(pricewatch.EUNAVAILABLE, "sheet webhook returned status %d", resp.StatusCode)
	}
	return nil
}
