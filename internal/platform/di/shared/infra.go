// backend/internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"talentagency/internal/adapters/out/cache"
	appcfg "talentagency/internal/infra/config"
	"talentagency/internal/infra/database"
	firestoreinfra "talentagency/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager, optional Postgres/Redis)
// - owns resolved secrets (SendGrid, payment gateway)
// - owns env/config-resolved runtime settings
//
// IMPORTANT:
// Infra must NOT depend on routers, handlers, or usecases.
type Infra struct {
	// Config
	Config    *appcfg.Config
	ProjectID string
	Settings  RuntimeSettings

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *database.DB  // only when ORDER_STORE=postgres
	Redis         *redis.Client // only when REDIS_ADDR is set and reachable

	// Secrets (env first, then SecretManager)
	SendGridAPIKey   string
	PaymentSecretKey string
}

// NewInfra initializes shared infra.
// Firestore/GCS (and Postgres when selected) are strict (return error).
// Firebase/Auth, SecretManager and Redis are best-effort (warn + continue).
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	projectID := resolveProjectID(cfg)
	if projectID == "" {
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}

	settings, warns, err := ResolveRuntimeSettings(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		log.Printf("[shared.infra] WARN: %s", w)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
		Settings:  settings,
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds) // GOOGLE_APPLICATION_CREDENTIALS
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Optional: Secret Manager client (SendGrid / payment secrets)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: secretmanager.NewClient failed: %v (secrets must come from env)", err)
			sm = nil
		}
		inf.SecretManager = sm
	}

	// 2) Secrets (env -> SecretManager)
	{
		fetch := secretManagerFetcher(inf.SecretManager)
		inf.SendGridAPIKey = resolveSecret(ctx, fetch, projectID, "SENDGRID_API_KEY", cfg.SendGridAPIKey, cfg.SendGridAPIKeySecretName)
		inf.PaymentSecretKey = resolveSecret(ctx, fetch, projectID, "PAYMENT_SECRET_KEY", cfg.PaymentSecretKey, cfg.PaymentSecretKeySecretName)
		if inf.PaymentSecretKey == "" {
			log.Printf("[shared.infra] WARN: PAYMENT_SECRET_KEY unresolved (checkout completion and webhook are disabled)")
		}
	}

	// 3) Firestore (strict)
	{
		fs, err := firestoreinfra.NewClient(ctx, inf.ProjectID, clientOpts...)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.Firestore = fs.Client
	}

	// 4) GCS (strict)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: storage.NewClient failed: %w", err)
		}
		inf.GCS = gcsClient
		log.Printf("[shared.infra] GCS storage client initialized bucket=%s", settings.ImageBucket)
	}

	// 5) Firebase App/Auth (best-effort)
	{
		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.GetFirebaseProjectID())}
		if fbCfg.ProjectID == "" {
			fbCfg.ProjectID = inf.ProjectID
		}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[shared.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[shared.infra] Firebase Auth initialized project=%s", fbCfg.ProjectID)
			}
		}
	}

	// 6) Postgres (strict when ORDER_STORE=postgres)
	if settings.OrderStore == "postgres" {
		db, err := database.NewConnection(ctx, settings.DatabaseURL)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.DB = db
	}

	// 7) Redis (best-effort; in-memory idempotency store otherwise)
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb, err := cache.NewRedisClient(ctx, addr, cfg.RedisPassword)
		if err != nil {
			log.Printf("[shared.infra] WARN: redis unavailable addr=%s: %v (falling back to in-memory locks)", addr, err)
		} else {
			inf.Redis = rdb
			log.Printf("[shared.infra] Redis connected addr=%s", addr)
		}
	}

	// Final sanity checks (panic prevention)
	if inf.Firestore == nil || inf.GCS == nil {
		_ = inf.Close()
		return nil, errors.New("shared.infra: firestore/gcs client is nil after initialization (unexpected)")
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.DB != nil {
		_ = i.DB.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	return nil
}

func resolveProjectID(cfg *appcfg.Config) string {
	// Priority:
	// 1) cfg.FirestoreProjectID (resolved by config.Load)
	// 2) FIRESTORE_PROJECT_ID
	// 3) GCP_PROJECT_ID
	// 4) GOOGLE_CLOUD_PROJECT (often set in Cloud Run)
	// 5) FIREBASE_PROJECT_ID (fallback)
	if cfg != nil {
		if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
			return v
		}
	}

	for _, k := range []string{
		"FIRESTORE_PROJECT_ID",
		"GCP_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
		"FIREBASE_PROJECT_ID",
	} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}

	return ""
}

func redactPath(p string) string {
	// Do not log full path (Windows/Unix compatible light masking)
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	// Keep only the last segment
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***" + "/" + last
}
