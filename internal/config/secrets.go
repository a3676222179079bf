// internal/config/secrets.go
//
// Vault URI resolution for secret-bearing config values.
//
// Context
// -------
// Operators keep credentials out of YAML by writing `vault:` URIs, e.g.
//
//	email:
//	  password: "vault:secret/forms#smtp_password"
//
// cmd/web installs the resolver before the first Load; from then on every
// load, including fsnotify-triggered reloads, swaps each `vault:` value
// for the plain secret before the snapshot is cached.  The rest of the
// app only ever sees resolved strings.

package config

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SecretResolver resolves one `vault:` URI to its plain value.  Implemented
// by internal/vault.Client.
type SecretResolver interface {
	Resolve(ctx context.Context, uri string) (string, error)
}

// resolveTimeout bounds one secret lookup during a load.
const resolveTimeout = 10 * time.Second

var resolver SecretResolver

// UseSecretResolver installs r for all subsequent loads.  Call it before
// Load and before Watch; the watcher goroutine reads it on every reload.
func UseSecretResolver(r SecretResolver) { resolver = r }

// resolveSecrets replaces `vault:`-prefixed values in cfg.  Without an
// installed resolver the URIs are left in place with a warning, so a
// Vault-free deployment still boots on file configuration alone.
func resolveSecrets(cfg *Config) error {
	fields := []*string{
		&cfg.Email.Password,
		&cfg.Database.DSN,
	}
	for _, f := range fields {
		if !strings.HasPrefix(*f, "vault:") {
			continue
		}
		if resolver == nil {
			zap.S().Warnw("vault uri left unresolved, no resolver installed")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		plain, err := resolver.Resolve(ctx, *f)
		cancel()
		if err != nil {
			return err
		}
		*f = plain
	}
	return nil
}
