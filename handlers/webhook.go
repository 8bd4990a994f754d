package handlers

import (
	"context"
	"net/http"
	"time"

	"mentorlink/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const signatureHeader = "X-Signature"

type EventVerifier interface {
	Verify(ctx context.Context, rawPayload []byte, providedSignature string) (*models.VerifiedPaymentEvent, error)
}

type EventReconciler interface {
	Reconcile(ctx context.Context, ev *models.VerifiedPaymentEvent) (models.ReconciliationResult, error)
}

// WebhookHandler receives payment provider notifications.
type WebhookHandler struct {
	Verifier   EventVerifier
	Reconciler EventReconciler
	Timeout    time.Duration
}

func NewWebhookHandler(verifier EventVerifier, reconciler EventReconciler, timeout time.Duration) *WebhookHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookHandler{Verifier: verifier, Reconciler: reconciler, Timeout: timeout}
}

// PaymentWebhookHandler handles POST /api/payments/webhook. Every recognised event gets a 200,
// including amount mismatches; the provider would otherwise keep retrying a delivery that can
// never match.
func (h *WebhookHandler) PaymentWebhookHandler(c *gin.Context) {
	logger := getLogger(c)
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty webhook body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	event, err := h.Verifier.Verify(ctx, raw, c.GetHeader(signatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Reconciler.Reconcile(ctx, event)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("Payment webhook processed",
		zap.Int64("orderCode", event.OrderCode),
		zap.Bool("paid", result.Paid),
		zap.String("note", result.Note))
	c.JSON(http.StatusOK, result)
}
