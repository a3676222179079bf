// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Beyond the built-in `required`, `email`, and `hostname_port` rules one
// custom check matters here: the `clients` registry must contain the
// `noclient` fallback entry, so informational lookups for a whitelisted
// client without its own entry always resolve to a recipient.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}

	if _, ok := c.Clients["noclient"]; !ok {
		return fmt.Errorf("clients registry must contain the noclient fallback entry")
	}
	return nil
}
