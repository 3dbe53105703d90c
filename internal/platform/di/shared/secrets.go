// backend/internal/platform/di/shared/secrets.go
package shared

import (
	"context"
	"fmt"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// secretFetcher reads the payload of a fully qualified secret version name.
type secretFetcher func(ctx context.Context, name string) ([]byte, error)

func secretManagerFetcher(client *secretmanager.Client) secretFetcher {
	if client == nil {
		return nil
	}
	return func(ctx context.Context, name string) ([]byte, error) {
		res, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{
			Name: name,
		})
		if err != nil {
			return nil, fmt.Errorf("access secret version %s: %w", name, err)
		}
		return res.GetPayload().GetData(), nil
	}
}

// resolveSecret returns the env value when set, otherwise the latest version of
// secretName. An unresolved secret yields "" and a warning; the dependent
// feature stays disabled.
func resolveSecret(ctx context.Context, fetch secretFetcher, projectID, envKey, envValue, secretName string) string {
	if v := strings.TrimSpace(envValue); v != "" {
		return v
	}
	secretName = strings.TrimSpace(secretName)
	if secretName == "" {
		return ""
	}
	if fetch == nil {
		log.Printf("[shared.infra] WARN: %s empty and SecretManager unavailable (secret=%s)", envKey, secretName)
		return ""
	}

	name := secretName
	if !strings.HasPrefix(name, "projects/") {
		name = fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName)
	}
	data, err := fetch(ctx, name)
	if err != nil {
		log.Printf("[shared.infra] WARN: %s secret lookup failed: %v", envKey, err)
		return ""
	}
	log.Printf("[shared.infra] %s resolved from SecretManager secret=%s", envKey, secretName)
	return strings.TrimSpace(string(data))
}
