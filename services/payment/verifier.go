package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"mentorlink/models"

	"go.uber.org/zap"
)

// Verdict is the explicit outcome of one verification strategy.
type Verdict int

const (
	// VerdictUnavailable means the strategy could not decide (no key configured, timeout).
	VerdictUnavailable Verdict = iota
	VerdictVerified
	VerdictRejected
)

func (v Verdict) String() string {
	switch v {
	case VerdictVerified:
		return "verified"
	case VerdictRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}

// Strategy checks a signature over the event's data object.
type Strategy interface {
	Name() string
	Check(ctx context.Context, data map[string]interface{}, signature string) Verdict
}

// ProviderSignatureVerifier is the provider's own checksum algorithm: HMAC-SHA256 over the
// data fields as sorted "key=value" pairs joined by "&".
type ProviderSignatureVerifier struct {
	ChecksumKey string
}

func (p *ProviderSignatureVerifier) Name() string { return "provider_checksum" }

func (p *ProviderSignatureVerifier) Check(_ context.Context, data map[string]interface{}, signature string) Verdict {
	if p.ChecksumKey == "" {
		return VerdictUnavailable
	}
	msg, err := checksumString(data)
	if err != nil {
		return VerdictRejected
	}
	return compareHMAC(p.ChecksumKey, []byte(msg), signature)
}

// CanonicalHMACVerifier recomputes HMAC-SHA256 over the canonical JSON of data with the shared secret.
type CanonicalHMACVerifier struct {
	Secret string
}

func (c *CanonicalHMACVerifier) Name() string { return "canonical_hmac" }

func (c *CanonicalHMACVerifier) Check(_ context.Context, data map[string]interface{}, signature string) Verdict {
	if c.Secret == "" {
		return VerdictUnavailable
	}
	msg, err := canonicalJSON(data)
	if err != nil {
		return VerdictRejected
	}
	return compareHMAC(c.Secret, msg, signature)
}

func compareHMAC(key string, msg []byte, signature string) Verdict {
	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return VerdictRejected
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(msg)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return VerdictRejected
	}
	return VerdictVerified
}

// Verifier authenticates webhook bodies. The first strategy that is available decides: a
// rejection is final and is never rescued by a later strategy. When no strategy can decide the
// request fails closed.
type Verifier struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *zap.Logger
}

func NewVerifier(logger *zap.Logger, timeout time.Duration, strategies ...Strategy) *Verifier {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Verifier{strategies: strategies, timeout: timeout, logger: logger}
}

// NewDefaultVerifier wires the provider checksum first and the canonical HMAC second.
func NewDefaultVerifier(logger *zap.Logger, checksumKey, webhookSecret string, timeout time.Duration) *Verifier {
	return NewVerifier(logger, timeout,
		&ProviderSignatureVerifier{ChecksumKey: checksumKey},
		&CanonicalHMACVerifier{Secret: webhookSecret},
	)
}

// Verify parses, authenticates and normalizes a raw webhook body. providedSignature overrides the
// signature carried in the body when non-empty.
func (v *Verifier) Verify(ctx context.Context, rawPayload []byte, providedSignature string) (*models.VerifiedPaymentEvent, error) {
	env, err := parseEnvelope(rawPayload)
	if err != nil {
		return nil, err
	}
	if env.data == nil {
		return nil, &MalformedEventError{Reason: "missing data"}
	}

	signature := providedSignature
	if signature == "" {
		signature = env.signature
	}
	if signature == "" {
		return nil, &AuthenticationError{Reason: "signature absent"}
	}

	if err := v.authenticate(ctx, env.data, signature); err != nil {
		return nil, err
	}
	return normalize(env, signature)
}

func (v *Verifier) authenticate(ctx context.Context, data map[string]interface{}, signature string) error {
	for _, s := range v.strategies {
		verdict := v.run(ctx, s, data, signature)
		switch verdict {
		case VerdictVerified:
			return nil
		case VerdictRejected:
			v.logger.Warn("Webhook signature rejected", zap.String("strategy", s.Name()))
			return &AuthenticationError{Reason: "signature mismatch"}
		}
		v.logger.Debug("Verification strategy unavailable", zap.String("strategy", s.Name()))
	}
	v.logger.Error("No webhook verification strategy available, failing closed")
	return &AuthenticationError{Reason: "verification unavailable"}
}

// run bounds one strategy by the verifier timeout; a strategy that does not answer in time is unavailable.
func (v *Verifier) run(ctx context.Context, s Strategy, data map[string]interface{}, signature string) Verdict {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	result := make(chan Verdict, 1)
	go func() {
		result <- s.Check(ctx, data, signature)
	}()
	select {
	case verdict := <-result:
		return verdict
	case <-ctx.Done():
		v.logger.Warn("Verification strategy timed out", zap.String("strategy", s.Name()))
		return VerdictUnavailable
	}
}

// SignChecksum produces the provider-checksum signature for data.
func SignChecksum(data map[string]interface{}, key string) (string, error) {
	msg, err := checksumString(data)
	if err != nil {
		return "", err
	}
	return hexHMAC(key, []byte(msg)), nil
}

// SignCanonical produces the canonical-JSON HMAC signature for data.
func SignCanonical(data map[string]interface{}, secret string) (string, error) {
	msg, err := canonicalJSON(data)
	if err != nil {
		return "", err
	}
	return hexHMAC(secret, msg), nil
}

func hexHMAC(key string, msg []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}
