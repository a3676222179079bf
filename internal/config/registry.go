// internal/config/registry.go
//
// Remote client-registry overlay.
//
// Context
// -------
// Client onboarding happens outside this service: a registry endpoint
// serves the current `allowed_clients` list and per-client notification
// settings as JSON.  At load time that document is merged over the static
// `clients` and `allowed_clients` blocks from YAML, remote values winning,
// so new clients go live on the next reload without a deploy.
//
// Fetch failures are soft: the loader logs a warning and keeps the static
// blocks.  The service must boot from file configuration alone.
//
// Wire format
// -----------
//	{
//	  "allowed_clients": ["acme", "globex"],
//	  "clients": {
//	    "acme": {
//	      "name": "Acme Corp",
//	      "notification_email": "forms@acme.example",
//	      "webhook_url": "https://hooks.acme.example/forms"
//	    }
//	  }
//	}

package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// registryDoc mirrors the registry endpoint's JSON document.
type registryDoc struct {
	AllowedClients []string `json:"allowed_clients"`
	Clients        map[string]struct {
		Name              string `json:"name"`
		NotificationEmail string `json:"notification_email"`
		WebhookURL        string `json:"webhook_url"`
	} `json:"clients"`
}

// mergeRegistry fetches the registry document and overlays it on k.
func mergeRegistry(k *koanf.Koanf, url string) error {
	timeout := time.Duration(k.Int("registry.timeout_seconds")) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	cli := &http.Client{Timeout: timeout}
	resp, err := cli.Get(url)
	if err != nil {
		return fmt.Errorf("registry fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry fetch: unexpected status %d", resp.StatusCode)
	}

	var doc registryDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("registry decode: %w", err)
	}

	overlay := map[string]any{}
	if len(doc.AllowedClients) > 0 {
		overlay["allowed_clients"] = doc.AllowedClients
	}
	for key, c := range doc.Clients {
		overlay["clients."+key+".name"] = c.Name
		overlay["clients."+key+".notification_email"] = c.NotificationEmail
		if c.WebhookURL != "" {
			overlay["clients."+key+".webhook_url"] = c.WebhookURL
		}
	}
	for key, val := range overlay {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("registry overlay %s: %w", key, err)
		}
	}

	zap.S().Debugw("client registry merged",
		"url", url, "clients", len(doc.Clients))
	return nil
}
