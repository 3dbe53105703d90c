// backend/internal/platform/di/wiring_policy.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	httpin "talentagency/internal/adapters/in/http"
	"talentagency/internal/adapters/in/http/handlers"
	"talentagency/internal/adapters/in/http/middleware"
	"talentagency/internal/adapters/out/cache"
	outdb "talentagency/internal/adapters/out/db"
	outfs "talentagency/internal/adapters/out/firestore"
	httpout "talentagency/internal/adapters/out/http"
	"talentagency/internal/adapters/out/mail"
	usecase "talentagency/internal/application/usecase"
	orderdom "talentagency/internal/domain/order"
	shared "talentagency/internal/platform/di/shared"
)

// wiring_policy.go decides, from runtime settings, which implementation backs
// each optional dependency. It never builds usecases.

var errWiringNilInfra = errors.New("di: wiring policy infra is nil")

// buildOrderRepository picks Firestore (default) or Postgres (ORDER_STORE=postgres).
// The Postgres schema is applied on boot.
func buildOrderRepository(ctx context.Context, infra *shared.Infra) (orderdom.Repository, error) {
	if infra == nil {
		return nil, errWiringNilInfra
	}
	if infra.Settings.OrderStore != "postgres" {
		return outfs.NewOrderRepositoryFS(infra.Firestore), nil
	}
	if infra.DB == nil || infra.DB.Client == nil {
		return nil, errors.New("di: ORDER_STORE=postgres but database is not connected")
	}
	repo := outdb.NewOrderRepositoryPG(infra.DB.Client)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("di: migrate orders: %w", err)
	}
	log.Printf("[di] orders stored in Postgres")
	return repo, nil
}

// buildIdempotencyStore uses Redis when connected, otherwise a process-local map.
// The in-memory store only guards a single instance.
func buildIdempotencyStore(infra *shared.Infra) usecase.IdempotencyStore {
	if infra != nil && infra.Redis != nil {
		return cache.NewRedisIdempotencyStore(infra.Redis, "")
	}
	log.Printf("[di] WARN: REDIS_ADDR not set; checkout completion locks are process-local")
	return cache.NewMemoryIdempotencyStore()
}

// buildWebhookVerifier returns nil (webhook answers 503) without a secret key.
func buildWebhookVerifier(infra *shared.Infra, gateway *httpout.PaymentGatewayClient) handlers.SignatureVerifier {
	if infra == nil || gateway == nil || strings.TrimSpace(infra.PaymentSecretKey) == "" {
		return nil
	}
	return gateway
}

// buildAuthMiddleware returns nil when Firebase Auth is unavailable:
// protected routes then answer 503 and optional ones run anonymously.
func buildAuthMiddleware(infra *shared.Infra) *middleware.UserAuthMiddleware {
	if infra == nil || infra.FirebaseAuth == nil {
		log.Printf("[di] WARN: FirebaseAuth is nil; auth middleware disabled")
		return nil
	}
	return &middleware.UserAuthMiddleware{Verifier: infra.FirebaseAuth}
}

// buildMailDebug enables /admin/debug/mail only with a SendGrid key and a merchant inbox.
func buildMailDebug(infra *shared.Infra) http.Handler {
	if infra == nil || strings.TrimSpace(infra.SendGridAPIKey) == "" {
		return nil
	}
	s := infra.Settings
	if s.MerchantEmail == "" {
		return nil
	}
	return httpin.NewMailDebugHandler(mail.NewSendGridClient(infra.SendGridAPIKey), s.MailFrom, s.MailFromName, s.MerchantEmail)
}
