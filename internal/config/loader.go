// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from four layers (highest
precedence last):

  1. Optional `conf/.env` dotenv file.
  2. `conf/global.yaml` — the base tree.
  3. `conf/<GCFORMS_ENV>.yaml` — environment overlay, deep-merged
     key-by-key; nested mappings merge recursively, override scalars win.
  4. Environment variables prefixed `GCFORMS_`, where `__` maps to “.”
     (e.g., `GCFORMS_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the remote client registry (when configured) is fetched
and overlaid on the `clients` and `allowed_clients` blocks, the tree is
unmarshalled into strongly-typed structs, validated, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer; `Watch()` wires an fsnotify watcher on the
conf directory to trigger Reload on change.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, overlay, registry fetch.
  • ERROR spans — YAML parse, overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Vault URI resolution runs inside Load on every load, through the
    resolver cmd/web installs first; see UseSecretResolver.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves GCFORMS_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("GCFORMS_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, base YAML, the environment overlay, env overrides, and
// the remote registry, then validates and caches the Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Environment overlay: conf/<GCFORMS_ENV>.yaml.  Koanf merges nested
	// maps recursively; overlay scalars win on conflict.
	if envName := os.Getenv("GCFORMS_ENV"); envName != "" {
		overlayPath := filepath.Join(root, "conf", envName+".yaml")
		if _, err := os.Stat(overlayPath); err == nil {
			if err := k.Load(file.Provider(overlayPath), yaml.Parser()); err != nil {
				zap.S().Errorw("config overlay load failed", "file", overlayPath, "err", err)
				return nil, err
			}
			zap.S().Debugw("config overlay merged", "file", overlayPath)
		}
	}

	// Env overrides: GCFORMS_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("GCFORMS_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	// Remote client registry, merged over the static clients block.
	if url := k.String("registry.url"); url != "" {
		if err := mergeRegistry(k, url); err != nil {
			// Registry unavailability keeps the static block; the service
			// must still boot from file configuration alone.
			zap.S().Warnw("client registry fetch failed, using static clients",
				"url", url, "err", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	// Secrets resolve on every load, so a reload never caches a snapshot
	// with raw vault: URIs.
	if err := resolveSecrets(&cfg); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"clients", len(cfg.AllowedClients),
		"form_types", len(cfg.AllowedFormTypes),
		"max_payload", cfg.Security.MaxPayloadSize,
	)
	return &cfg, nil
}

/*──────────────────────────── hot reload ──────────────────────────────────*/

// Watch reloads configuration whenever a file under conf/ changes.  The
// watcher runs until the returned closer is called.
func Watch() (func() error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Join(rootDir(), "conf")); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Ext(ev.Name) != ".yaml" {
					continue
				}
				zap.S().Infow("config file changed, reloading", "file", ev.Name)
				if err := Reload(); err != nil {
					// Keep serving the previous snapshot on a bad edit.
					zap.S().Errorw("config reload failed", "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				zap.S().Warnw("config watcher error", "err", err)
			}
		}
	}()

	return w.Close, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
