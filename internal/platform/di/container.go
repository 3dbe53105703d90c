// backend/internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	httpin "talentagency/internal/adapters/in/http"
	"talentagency/internal/adapters/in/http/handlers"
	"talentagency/internal/adapters/in/http/middleware"
	outfs "talentagency/internal/adapters/out/firestore"
	gcso "talentagency/internal/adapters/out/gcs"
	httpout "talentagency/internal/adapters/out/http"
	"talentagency/internal/adapters/out/mail"
	usecase "talentagency/internal/application/usecase"
	orderdom "talentagency/internal/domain/order"
	appcfg "talentagency/internal/infra/config"
	shared "talentagency/internal/platform/di/shared"
)

// Container は main.go から使う依存オブジェクトの束。
// main.go を薄くするため、usecase の組み立てと background worker をここに集める。
type Container struct {
	Infra  *shared.Infra
	Config *appcfg.Config

	Auth *middleware.UserAuthMiddleware

	// Usecases
	CatalogReader        *usecase.CatalogReader
	CatalogUC            *usecase.CatalogUsecase
	ImageUC              *usecase.ImageUsecase
	CartUC               *usecase.CartUsecase
	WishlistUC           *usecase.WishlistUsecase
	CheckoutUC           *usecase.CheckoutUsecase
	OrderUC              *usecase.OrderUsecase
	NewsUC               *usecase.NewsUsecase
	ContactUC            *usecase.ContactUsecase
	ServiceApplicationUC *usecase.ServiceApplicationUsecase
	AuthUC               *usecase.AuthUsecase

	// Background
	OutboxSweeper *usecase.OutboxSweeper

	webhookVerifier handlers.SignatureVerifier
	mailDebug       http.Handler

	wg sync.WaitGroup
}

// NewContainer builds shared infra, then repositories, adapters and usecases.
func NewContainer(ctx context.Context) (*Container, error) {
	infra, err := shared.NewInfra(ctx)
	if err != nil {
		return nil, err
	}
	c, err := newContainerWithInfra(ctx, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return c, nil
}

func newContainerWithInfra(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		return nil, errWiringNilInfra
	}
	if infra.Config == nil {
		return nil, errors.New("di: shared infra config is nil")
	}
	fsClient := infra.Firestore
	if fsClient == nil {
		return nil, errors.New("di: infra.Firestore is nil")
	}
	if infra.GCS == nil {
		return nil, errors.New("di: infra.GCS is nil")
	}
	s := infra.Settings

	c := &Container{Infra: infra, Config: infra.Config}

	// --------------------------------------------------------
	// Repositories
	// --------------------------------------------------------
	productRepo := outfs.NewProductRepositoryFS(fsClient)
	cartRepo := outfs.NewCartRepositoryFS(fsClient)
	wishlistRepo := outfs.NewWishlistRepositoryFS(fsClient)
	intentRepo := outfs.NewCheckoutIntentRepositoryFS(fsClient)
	newsRepo := outfs.NewNewsPostRepositoryFS(fsClient)
	commentRepo := outfs.NewNewsCommentRepositoryFS(fsClient)
	applicationRepo := outfs.NewServiceApplicationRepositoryFS(fsClient)

	orderRepo, err := buildOrderRepository(ctx, infra)
	if err != nil {
		return nil, err
	}

	imageRepo := gcso.NewImageRepositoryGCS(infra.GCS, s.ImageBucket, s.ImagePublicBaseURL)

	// --------------------------------------------------------
	// Outbound adapters
	// --------------------------------------------------------
	mailer, err := mail.NewMailerWithSendGrid(infra.SendGridAPIKey, s.MailFrom, s.MailFromName, s.MerchantEmail)
	if err != nil {
		return nil, fmt.Errorf("di: mailer: %w", err)
	}
	gateway := httpout.NewPaymentGatewayClient(s.PaymentBaseURL, infra.PaymentSecretKey)
	locks := buildIdempotencyStore(infra)

	// --------------------------------------------------------
	// Usecases
	// --------------------------------------------------------
	resolver := usecase.NewCatalogResolver(productRepo)
	policy := orderdom.PolicyByName(s.OrderStatusPolicy)

	c.CatalogReader = usecase.NewCatalogReader(productRepo, productRepo)
	c.CatalogUC = usecase.NewCatalogUsecase(productRepo, resolver, nil)
	c.ImageUC = usecase.NewImageUsecase(imageRepo)
	c.CartUC = usecase.NewCartUsecase(cartRepo, resolver)
	c.WishlistUC = usecase.NewWishlistUsecase(wishlistRepo, resolver, nil)
	c.OrderUC = usecase.NewOrderUsecase(orderRepo, policy, nil)
	c.CheckoutUC = usecase.NewCheckoutUsecase(
		c.CartUC,
		intentRepo,
		c.OrderUC,
		gateway,
		mailer,
		locks,
		nil,
		usecase.CheckoutConfig{
			PublicKey: s.PaymentPublicKey,
			Currency:  s.PaymentCurrency,
		},
	)
	c.NewsUC = usecase.NewNewsUsecase(newsRepo, commentRepo, nil)
	c.ContactUC = usecase.NewContactUsecase(mailer)
	c.ServiceApplicationUC = usecase.NewServiceApplicationUsecase(applicationRepo, mailer, nil)
	c.AuthUC = usecase.NewAuthUsecase(infra.AccountProvider(ctx))

	c.OutboxSweeper = usecase.NewOutboxSweeper(c.CheckoutUC, infra.Config.OutboxSweepInterval, infra.Config.OutboxStuckAfter)

	// --------------------------------------------------------
	// Edge
	// --------------------------------------------------------
	c.Auth = buildAuthMiddleware(infra)
	c.webhookVerifier = buildWebhookVerifier(infra, gateway)
	c.mailDebug = buildMailDebug(infra)

	log.Printf("[di] container ready policy=%s orderStore=%s currency=%s", policy.Name(), s.OrderStore, s.PaymentCurrency)
	return c, nil
}

// RouterDeps exposes the container to httpin.NewRouter.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		Auth:                 c.Auth,
		CatalogReader:        c.CatalogReader,
		CatalogUC:            c.CatalogUC,
		ImageUC:              c.ImageUC,
		CartUC:               c.CartUC,
		WishlistUC:           c.WishlistUC,
		CheckoutUC:           c.CheckoutUC,
		OrderUC:              c.OrderUC,
		NewsUC:               c.NewsUC,
		ContactUC:            c.ContactUC,
		ServiceApplicationUC: c.ServiceApplicationUC,
		AuthUC:               c.AuthUC,
		WebhookVerifier:      c.webhookVerifier,
		MailDebug:            c.mailDebug,
	}
}

// Start launches the catalog listener and the outbox sweeper. Both stop when ctx is done.
func (c *Container) Start(ctx context.Context) {
	if c.CatalogReader != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.CatalogReader.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[di] catalog reader stopped err=%v", err)
			}
		}()
	}
	if c.OutboxSweeper != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.OutboxSweeper.Run(ctx)
		}()
	}
}

// Close waits for background workers (cancel the Start ctx first) and closes clients.
func (c *Container) Close() {
	if c == nil {
		return
	}
	c.wg.Wait()
	if c.Infra != nil {
		_ = c.Infra.Close()
	}
}
