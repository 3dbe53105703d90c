// backend/internal/platform/di/shared/auth_adapter.go
package shared

import (
	"context"
	"log"

	fbadapter "talentagency/internal/adapters/out/firebase"
	"talentagency/internal/application/usecase"
)

//
// ========================================
// Firebase Auth 用アダプタ（shared）
// - sign-up / sign-in は AccountProviderFirebase
// - ID token 検証は *auth.Client をそのまま middleware に渡す
// ========================================
//

// AccountProvider builds the sign-up/sign-in provider from the shared clients.
// Missing pieces (admin client, web API key) surface as errors per call, not at boot.
func (i *Infra) AccountProvider(ctx context.Context) usecase.AccountProvider {
	if i == nil {
		return nil
	}
	if i.FirebaseAuth == nil {
		log.Printf("[shared.auth] WARN: FirebaseAuth is nil (sign-up disabled)")
	}
	if i.Config == nil || i.Config.FirebaseWebAPIKey == "" {
		log.Printf("[shared.auth] WARN: FIREBASE_WEB_API_KEY is empty (sign-in disabled)")
	}
	webKey := ""
	if i.Config != nil {
		webKey = i.Config.FirebaseWebAPIKey
	}
	return fbadapter.NewAccountProviderFirebase(ctx, i.FirebaseAuth, webKey)
}
