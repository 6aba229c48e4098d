// Package payment drives the EFTPOS card terminal over its private
// wire protocol: one newline-terminated JSON request and one response
// per TCP connection, never reused, never retried. Ambiguous outcomes
// (timeout, unreadable response) stay ambiguous on purpose - retrying
// could charge the card twice.
package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"modern-pos-backend/internal/models"
	"modern-pos-backend/internal/poserr"
)

const referenceFormat = "20060102150405"

// PayloadItem is one itemized line sent to the terminal.
type PayloadItem struct {
	Name    string          `json:"name"`
	Barcode string          `json:"barcode"`
	Qty     decimal.Decimal `json:"qty"`
	Price   decimal.Decimal `json:"price"`
	Amount  decimal.Decimal `json:"amount"`
}

// Payload is the SALE request the terminal expects. The amount rides
// in both integer minor units and decimal major units.
type Payload struct {
	Type          string          `json:"type"`
	Reference     string          `json:"reference"`
	AmountCents   int64           `json:"amount_cents"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	SubTotal      decimal.Decimal `json:"sub_total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	GSTTotal      decimal.Decimal `json:"gst_total"`
	Items         []PayloadItem   `json:"items"`
	Operator      string          `json:"operator"`
	Terminal      string          `json:"terminal"`
}

// Result is the interpreted terminal verdict. Reason is set on decline.
type Result struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// TerminalClient talks to one card terminal. inFlight enforces the
// single-flight payment rule: at most one attempt at a time, a second
// concurrent call fails fast instead of queuing behind the first.
type TerminalClient struct {
	host     string
	port     int
	timeout  time.Duration
	currency string
	terminal string
	log      *zap.Logger

	inFlight sync.Mutex
}

func NewTerminalClient(host string, port int, timeout time.Duration, currency, terminal string, log *zap.Logger) *TerminalClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &TerminalClient{
		host:     host,
		port:     port,
		timeout:  timeout,
		currency: currency,
		terminal: terminal,
		log:      log,
	}
}

// Totals carries the register's displayed totals into the payload.
// GST is the register's GST-inclusive figure, not a computed tax share.
type Totals struct {
	Sub      decimal.Decimal
	Discount decimal.Decimal
	GST      decimal.Decimal
}

// BuildPayload assembles the SALE request for a cart total. The
// sub/discount/GST figures come from the caller's register state. The
// reference token is the current timestamp plus a short random suffix
// so two sales in the same second stay distinguishable.
func (c *TerminalClient) BuildPayload(total decimal.Decimal, totals Totals, items []models.CartItem, operator string) Payload {
	total = total.Round(2)
	payloadItems := make([]PayloadItem, 0, len(items))
	for i := range items {
		items[i].Normalize()
		payloadItems = append(payloadItems, PayloadItem{
			Name:    items[i].Name,
			Barcode: items[i].Barcode,
			Qty:     items[i].Qty,
			Price:   items[i].Price,
			Amount:  items[i].Amount,
		})
	}
	reference := time.Now().Format(referenceFormat) + "-" + uuid.NewString()[:8]
	return Payload{
		Type:          "SALE",
		Reference:     reference,
		AmountCents:   total.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Amount:        total,
		Currency:      c.currency,
		SubTotal:      totals.Sub.Round(2),
		DiscountTotal: totals.Discount.Round(2),
		GSTTotal:      totals.GST.Round(2),
		Items:         payloadItems,
		Operator:      operator,
		Terminal:      c.terminal,
	}
}

// Charge sends the payload and interprets the terminal's answer. Socket
// failures return a ProtocolError; a readable decline returns a Result
// with Approved false and the reason.
func (c *TerminalClient) Charge(payload Payload) (Result, error) {
	if !c.inFlight.TryLock() {
		return Result{}, poserr.Protocol(nil, "a card payment is already in progress")
	}
	defer c.inFlight.Unlock()

	message, err := encodePayload(payload)
	if err != nil {
		return Result{}, poserr.Protocol(err, "could not encode terminal request")
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	conn, err := net.DialTimeout("tcp", addr, c.timeout)
	if err != nil {
		return Result{}, poserr.Protocol(err, "terminal connection failed (%s)", addr)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write(message); err != nil {
		return Result{}, poserr.Protocol(err, "terminal send failed")
	}

	response, err := readResponse(conn)
	if err != nil {
		return Result{}, err
	}

	result := interpretResponse(response)
	c.log.Info("terminal exchange finished",
		zap.String("reference", payload.Reference),
		zap.Bool("approved", result.Approved))
	return result, nil
}

// encodePayload produces single-line ASCII-safe JSON plus the newline
// terminator the terminal frames on.
func encodePayload(payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return append(escapeNonASCII(body), '\n'), nil
}

// escapeNonASCII rewrites any rune above 0x7F as a \uXXXX sequence so
// the wire bytes are pure ASCII, matching what the terminal firmware
// accepts.
func escapeNonASCII(in []byte) []byte {
	var out strings.Builder
	for _, r := range string(in) {
		if r < 0x80 {
			out.WriteRune(r)
		} else {
			fmt.Fprintf(&out, "\\u%04x", r)
		}
	}
	return []byte(out.String())
}

// readResponse accumulates bytes until a newline arrives, the read
// deadline passes, or the peer closes. A timeout mid-read is not an
// error here: whatever arrived (possibly nothing) is the response.
func readResponse(conn net.Conn) ([]byte, error) {
	var received []byte
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			received = append(received, buf[:n]...)
			if strings.ContainsRune(string(buf[:n]), '\n') {
				break
			}
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				break
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, poserr.Protocol(err, "terminal read failed")
		}
	}
	return []byte(strings.TrimSpace(string(received))), nil
}

// interpretResponse maps the raw terminal bytes to an outcome:
//   - empty -> declined, "no response"
//   - JSON with approved/success -> that verdict, message/responseText
//     as the decline reason
//   - anything else -> case-insensitive keyword scan, raw text as the
//     reason on decline
func interpretResponse(response []byte) Result {
	if len(response) == 0 {
		return Result{Approved: false, Reason: "no response from terminal"}
	}
	text := strings.TrimSpace(string(response))

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		upper := strings.ToUpper(text)
		if strings.Contains(upper, "APPROVED") || strings.Contains(upper, "SUCCESS") {
			return Result{Approved: true}
		}
		if strings.Contains(upper, "DECLINED") || strings.Contains(upper, "FAILED") ||
			strings.Contains(upper, "ERROR") {
			return Result{Approved: false, Reason: text}
		}
		return Result{Approved: false, Reason: "unrecognized terminal response: " + text}
	}

	if truthy(parsed["approved"]) || truthy(parsed["success"]) {
		return Result{Approved: true}
	}
	reason := stringField(parsed, "message")
	if reason == "" {
		reason = stringField(parsed, "responseText")
	}
	if reason == "" {
		reason = "card payment declined"
	}
	return Result{Approved: false, Reason: reason}
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
