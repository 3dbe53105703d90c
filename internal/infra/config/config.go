// backend/internal/infra/config/config.go
package config

import (
	"log"
	"os"
	"strings"
	"time"
)

const (
	DefaultOutboxSweepInterval = time.Minute
	DefaultOutboxStuckAfter    = 2 * time.Minute
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port                     string
	GCPProjectID             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	GCPCreds                 string

	// Firebase Auth 用のプロジェクトID
	FirebaseProjectID string
	// パスワードサインイン (Identity Toolkit) 用の Web API Key
	FirebaseWebAPIKey string

	// 画像アップロード先 (GCS)
	ImageBucket        string
	ImagePublicBaseURL string

	// メール (SendGrid)
	SendGridAPIKey           string
	SendGridAPIKeySecretName string
	MailFrom                 string
	MailFromName             string
	MerchantEmail            string

	// 決済ゲートウェイ
	PaymentPublicKey           string
	PaymentSecretKey           string
	PaymentSecretKeySecretName string
	PaymentBaseURL             string
	PaymentCurrency            string

	CorsAllowedOrigin string

	// faithful | strict
	OrderStatusPolicy string
	// firestore | postgres
	OrderStore  string
	DatabaseURL string

	// 空なら in-memory の idempotency store を使う
	RedisAddr     string
	RedisPassword string

	OutboxSweepInterval time.Duration
	OutboxStuckAfter    time.Duration
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	// ベースとなる GCP プロジェクト ID
	defaultProject := getenvDefault("GCP_PROJECT_ID", "talent-agency-dev")

	cfg := &Config{
		Port:                     getenvDefault("PORT", "8080"),
		GCPProjectID:             defaultProject,
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		// FIREBASE_PROJECT_ID が未指定なら GCP のデフォルトを使う
		FirebaseProjectID: getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		FirebaseWebAPIKey: os.Getenv("FIREBASE_WEB_API_KEY"),

		ImageBucket:        os.Getenv("IMAGE_BUCKET"),
		ImagePublicBaseURL: os.Getenv("IMAGE_PUBLIC_BASE_URL"),

		SendGridAPIKey:           os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecretName: os.Getenv("SENDGRID_API_KEY_SECRET_NAME"),
		MailFrom:                 os.Getenv("MAIL_FROM"),
		MailFromName:             getenvDefault("MAIL_FROM_NAME", "Talent Agency"),
		MerchantEmail:            os.Getenv("MERCHANT_EMAIL"),

		PaymentPublicKey:           os.Getenv("PAYMENT_PUBLIC_KEY"),
		PaymentSecretKey:           os.Getenv("PAYMENT_SECRET_KEY"),
		PaymentSecretKeySecretName: os.Getenv("PAYMENT_SECRET_KEY_SECRET_NAME"),
		PaymentBaseURL:             getenvDefault("PAYMENT_BASE_URL", "https://api.paystack.co"),
		PaymentCurrency:            strings.ToUpper(getenvDefault("PAYMENT_CURRENCY", "NGN")),

		CorsAllowedOrigin: getenvDefault("CORS_ALLOWED_ORIGIN", "*"),

		OrderStatusPolicy: strings.ToLower(getenvDefault("ORDER_STATUS_POLICY", "faithful")),
		OrderStore:        strings.ToLower(getenvDefault("ORDER_STORE", "firestore")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		OutboxSweepInterval: getenvDuration("OUTBOX_SWEEP_INTERVAL", DefaultOutboxSweepInterval),
		OutboxStuckAfter:    getenvDuration("OUTBOX_STUCK_AFTER", DefaultOutboxStuckAfter),
	}

	return cfg
}

// GetFirestoreProjectID は Firestore/GCP プロジェクト ID を返します。
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

// Firebase 用の ProjectID を返すヘルパー
func (c *Config) GetFirebaseProjectID() string {
	return c.FirebaseProjectID
}

// UsePostgresOrders reports whether orders live in Postgres instead of Firestore.
func (c *Config) UsePostgresOrders() bool {
	return c.OrderStore == "postgres"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// 不正な値は WARN を出してデフォルトに戻す
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] WARN: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
