package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "GCP_PROJECT_ID", "FIRESTORE_PROJECT_ID", "FIREBASE_PROJECT_ID",
		"PAYMENT_CURRENCY", "PAYMENT_BASE_URL", "ORDER_STATUS_POLICY", "ORDER_STORE",
		"CORS_ALLOWED_ORIGIN", "OUTBOX_SWEEP_INTERVAL", "OUTBOX_STUCK_AFTER", "MAIL_FROM_NAME",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "talent-agency-dev", cfg.GetFirestoreProjectID())
	assert.Equal(t, "talent-agency-dev", cfg.GetFirebaseProjectID())
	assert.Equal(t, "NGN", cfg.PaymentCurrency)
	assert.Equal(t, "https://api.paystack.co", cfg.PaymentBaseURL)
	assert.Equal(t, "faithful", cfg.OrderStatusPolicy)
	assert.False(t, cfg.UsePostgresOrders())
	assert.Equal(t, "*", cfg.CorsAllowedOrigin)
	assert.Equal(t, time.Minute, cfg.OutboxSweepInterval)
	assert.Equal(t, 2*time.Minute, cfg.OutboxStuckAfter)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "agency-prod")
	t.Setenv("FIREBASE_PROJECT_ID", "agency-auth")
	t.Setenv("FIRESTORE_PROJECT_ID", "")
	t.Setenv("PAYMENT_CURRENCY", "ghs")
	t.Setenv("ORDER_STORE", "Postgres")
	t.Setenv("ORDER_STATUS_POLICY", "STRICT")
	t.Setenv("OUTBOX_SWEEP_INTERVAL", "30s")
	t.Setenv("OUTBOX_STUCK_AFTER", "5m")

	cfg := Load()

	assert.Equal(t, "agency-prod", cfg.FirestoreProjectID)
	assert.Equal(t, "agency-auth", cfg.FirebaseProjectID)
	assert.Equal(t, "GHS", cfg.PaymentCurrency)
	assert.True(t, cfg.UsePostgresOrders())
	assert.Equal(t, "strict", cfg.OrderStatusPolicy)
	assert.Equal(t, 30*time.Second, cfg.OutboxSweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.OutboxStuckAfter)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("OUTBOX_SWEEP_INTERVAL", "soon")
	t.Setenv("OUTBOX_STUCK_AFTER", "-1m")

	cfg := Load()

	assert.Equal(t, DefaultOutboxSweepInterval, cfg.OutboxSweepInterval)
	assert.Equal(t, DefaultOutboxStuckAfter, cfg.OutboxStuckAfter)
}
