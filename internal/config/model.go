// internal/config/model.go
//
// Typed configuration model for the forms service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from four overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `conf/<GCFORMS_ENV>.yaml`                 – environment overlay,
//   • `GCFORMS_`-prefixed environment overrides – highest precedence,
//
// plus a dynamically-fetched client registry merged over the `clients`
// and `allowed_clients` blocks.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling, so the rest of the app
// never sees Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The tree is immutable after Load; handlers read it through the
//     atomic pointer without locks.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "github.com/gadgetcloud-io/forms-service/internal/validate"

//
// Service section
//

// Service identifies the API to callers of /health and /info.
type Service struct {
	Name              string   `koanf:"name"               validate:"required"`
	Version           string   `koanf:"version"            validate:"required"`
	APIVersion        string   `koanf:"api_version"        validate:"required"`
	SupportedVersions []string `koanf:"supported_versions"`
	BuildTime         string   `koanf:"build_time"`
}

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Security section
//

// Security gates every submission before parsing and validation.
type Security struct {
	MaxPayloadSize int    `koanf:"max_payload_size" validate:"required,gt=0"`
	HoneypotField  string `koanf:"honeypot_field"   validate:"required"`
}

//
// Rate-limiting section
//

// RateLimiting is carried for the future limiter; the current
// implementation always allows (see internal/ratelimit).
type RateLimiting struct {
	Enabled          bool `koanf:"enabled"`
	MaxRequestsPerIP int  `koanf:"max_requests_per_ip"`
}

//
// Client registry
//

// Client is one tenant's notification and webhook configuration.  The
// `noclient` entry doubles as the fallback for informational lookups.
type Client struct {
	Name              string `koanf:"name"               validate:"required"`
	NotificationEmail string `koanf:"notification_email" validate:"required,email"`
	WebhookURL        string `koanf:"webhook_url"`
}

//
// Email templates
//

// EmailTemplate configures the admin notification subject (with a {client}
// placeholder) and the optional auto-reply for one form type.
type EmailTemplate struct {
	Subject          string `koanf:"subject" validate:"required"`
	AutoReply        bool   `koanf:"autoReply"`
	AutoReplySubject string `koanf:"autoReplySubject"`
	AutoReplyMessage string `koanf:"autoReplyMessage"`
}

//
// Email transport
//

// Email holds SMTP transport settings.  Password may be a `vault:` URI.
type Email struct {
	Host     string `koanf:"host"     validate:"required"`
	Port     int    `koanf:"port"     validate:"required"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"     validate:"required,email"`
}

//
// Database section
//

// Database holds the submissions-store DSN.  The DSN may itself be a
// `vault:` URI resolved at load time.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// Remote registry source
//

// Registry points at the optional remote client-registry endpoint.  When URL
// is empty the static `clients` block stands alone.
type Registry struct {
	URL            string `koanf:"url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

//
// GeoIP section
//

// GeoIP enables best-effort source-IP enrichment when DBPath is set.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	Service          Service                             `koanf:"service"`
	HTTP             HTTP                                `koanf:"http"`
	Security         Security                            `koanf:"security"`
	RateLimiting     RateLimiting                        `koanf:"rate_limiting"`
	AllowedClients   []string                            `koanf:"allowed_clients"    validate:"required,min=1"`
	AllowedFormTypes map[string][]string                 `koanf:"allowed_form_types" validate:"required"`
	ValidationRules  map[string][]string                 `koanf:"validation_rules"`
	FieldConstraints map[string]validate.FieldConstraint `koanf:"field_constraints"`
	EmailTemplates   map[string]EmailTemplate            `koanf:"email_templates"`
	Clients          map[string]Client                   `koanf:"clients" validate:"required"`
	Email            Email                               `koanf:"email"`
	Database         Database                            `koanf:"database"`
	Registry         Registry                            `koanf:"registry"`
	GeoIP            GeoIP                               `koanf:"geoip"`
}

// ClientConfig returns the registry entry for key, falling back to the
// `noclient` entry for unknown keys.  Informational lookups only; the
// whitelist decision never uses this fallback.
func (c *Config) ClientConfig(key string) Client {
	if cc, ok := c.Clients[key]; ok {
		return cc
	}
	return c.Clients["noclient"]
}

// EmailTemplate returns the template for formType, falling back to the
// `contacts` template when the form type has no entry of its own.  ok is
// false when neither exists; callers must not send from a zero template.
func (c *Config) EmailTemplate(formType string) (EmailTemplate, bool) {
	if t, ok := c.EmailTemplates[formType]; ok {
		return t, true
	}
	t, ok := c.EmailTemplates["contacts"]
	return t, ok
}
