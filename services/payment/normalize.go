package payment

import (
	"encoding/json"
	"strconv"
	"strings"

	"mentorlink/models"

	"github.com/shopspring/decimal"
)

// envelope is the webhook body as providers send it. Only data and the signature are required.
type envelope struct {
	data      map[string]interface{}
	rawData   json.RawMessage
	signature string
	top       map[string]interface{}
}

func parseEnvelope(raw []byte) (*envelope, error) {
	var parts map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, &MalformedEventError{Reason: "body is not a JSON object"}
	}
	top, err := decodeObject(raw)
	if err != nil {
		return nil, &MalformedEventError{Reason: "body is not a JSON object"}
	}

	env := &envelope{top: top, signature: firstString(top, "signature", "sig")}
	rawData, ok := parts["data"]
	if !ok || string(rawData) == "null" {
		return env, nil
	}
	data, err := decodeObject(rawData)
	if err != nil {
		return nil, &MalformedEventError{Reason: "data is not a JSON object"}
	}
	env.data = data
	env.rawData = rawData
	return env, nil
}

// normalize maps the provider's field variants into a VerifiedPaymentEvent.
// Status-like fields fall back to the envelope when data omits them.
func normalize(env *envelope, signature string) (*models.VerifiedPaymentEvent, error) {
	orderCode, ok := intField(env.data, "orderCode", "order_code")
	if !ok {
		return nil, &MalformedEventError{Reason: "missing or invalid orderCode"}
	}
	amount, ok := decimalField(env.data, "amount")
	if !ok {
		return nil, &MalformedEventError{Reason: "missing or invalid amount"}
	}

	ev := &models.VerifiedPaymentEvent{
		OrderCode:     orderCode,
		Amount:        amount,
		ProviderCode:  firstString(env.data, "code"),
		Status:        strings.ToUpper(firstString(env.data, "status")),
		PaymentLinkID: firstString(env.data, "paymentLinkId", "payment_link_id"),
		Signature:     signature,
	}
	if ev.ProviderCode == "" {
		ev.ProviderCode = firstString(env.top, "code")
	}
	if ev.Status == "" {
		ev.Status = strings.ToUpper(firstString(env.top, "status"))
	}
	if b, ok := boolField(env.data, "success"); ok {
		ev.Success = &b
	} else if b, ok := boolField(env.top, "success"); ok {
		ev.Success = &b
	}
	return ev, nil
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func intField(m map[string]interface{}, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case json.Number:
			n, err := v.Int64()
			return n, err == nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			return n, err == nil
		}
	}
	return 0, false
}

func decimalField(m map[string]interface{}, key string) (decimal.Decimal, bool) {
	switch v := m[key].(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	return decimal.Zero, false
}

func boolField(m map[string]interface{}, key string) (bool, bool) {
	switch v := m[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}
