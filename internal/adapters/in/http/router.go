// internal/adapters/in/http/router.go
package httpin

import (
	"log"
	"net/http"

	"talentagency/internal/adapters/in/http/handlers"
	"talentagency/internal/adapters/in/http/middleware"
	usecase "talentagency/internal/application/usecase"
)

// RouterDeps collects all usecases (and other dependencies) injected from main.go.
type RouterDeps struct {
	Auth *middleware.UserAuthMiddleware

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

	// webhook の署名検証 (payment gateway client)
	WebhookVerifier handlers.SignatureVerifier

	// optional: /admin/debug/mail
	MailDebug http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so Cloud Run won't crash).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// handleBoth registers "/x" and "/x/".
func handleBoth(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	handleSafe(mux, pattern, h, name)
	handleSafe(mux, pattern+"/", h, name)
}

// NewRouter sets up HTTP routing for all endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := deps.Auth

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// 以降、Usecase が存在するものだけマウントする

	// catalog (GET は public, 書き込みは usecase 側で admin を確認)
	var product http.Handler
	if deps.CatalogReader != nil && deps.CatalogUC != nil {
		product = auth.Optional(handlers.NewProductHandler(deps.CatalogReader, deps.CatalogUC))
	}
	handleBoth(mux, "/shop/products", product, "Product")

	var image http.Handler
	if deps.ImageUC != nil {
		image = auth.RequireAdmin(handlers.NewImageHandler(deps.ImageUC))
	}
	handleSafe(mux, "/uploads/images", image, "Image")

	// me
	handleSafe(mux, "/me", auth.Require(handlers.NewMeHandler()), "Me")

	var cart http.Handler
	if deps.CartUC != nil {
		cart = auth.Require(handlers.NewCartHandler(deps.CartUC))
	}
	handleBoth(mux, "/me/cart", cart, "Cart")

	var wishlist http.Handler
	if deps.WishlistUC != nil {
		wishlist = auth.Require(handlers.NewWishlistHandler(deps.WishlistUC))
	}
	handleBoth(mux, "/me/wishlist", wishlist, "Wishlist")

	var checkout, webhook http.Handler
	if deps.CheckoutUC != nil {
		checkout = auth.Require(handlers.NewCheckoutHandler(deps.CheckoutUC))
		// 署名で認証するので token は不要
		webhook = handlers.NewPaymentWebhookHandler(deps.WebhookVerifier, deps.CheckoutUC)
	}
	handleBoth(mux, "/me/checkout", checkout, "Checkout")
	handleSafe(mux, "/webhooks/payment", webhook, "PaymentWebhook")

	var myOrders, adminOrders http.Handler
	if deps.OrderUC != nil {
		h := handlers.NewOrderHandler(deps.OrderUC)
		myOrders = auth.Require(h)
		adminOrders = auth.RequireAdmin(h)
	}
	handleBoth(mux, "/me/orders", myOrders, "Order(me)")
	handleBoth(mux, "/admin/orders", adminOrders, "Order(admin)")

	// news
	var news, adminNews http.Handler
	if deps.NewsUC != nil {
		h := handlers.NewNewsHandler(deps.NewsUC)
		news = auth.Optional(h)
		adminNews = auth.RequireAdmin(h)
	}
	handleBoth(mux, "/news/posts", news, "News")
	handleSafe(mux, "/news/comments/", news, "NewsComment")
	handleBoth(mux, "/admin/news/posts", adminNews, "News(admin)")

	// public forms
	var contact http.Handler
	if deps.ContactUC != nil {
		contact = handlers.NewContactHandler(deps.ContactUC)
	}
	handleSafe(mux, "/contact", contact, "Contact")

	var apply, adminApps http.Handler
	if deps.ServiceApplicationUC != nil {
		h := handlers.NewServiceApplicationHandler(deps.ServiceApplicationUC)
		apply = h
		adminApps = auth.RequireAdmin(h)
	}
	handleSafe(mux, "/service-applications", apply, "ServiceApplication")
	handleBoth(mux, "/admin/service-applications", adminApps, "ServiceApplication(admin)")

	// sign-up / sign-in
	var account http.Handler
	if deps.AuthUC != nil {
		account = handlers.NewAuthHandler(deps.AuthUC)
	}
	handleSafe(mux, "/auth/sign-up", account, "SignUp")
	handleSafe(mux, "/auth/sign-in", account, "SignIn")

	if deps.MailDebug != nil {
		handleSafe(mux, "/admin/debug/mail", auth.RequireAdmin(deps.MailDebug), "MailDebug")
	}

	return middleware.Recover(mux)
}
