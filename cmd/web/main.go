// cmd/web/main.go
//
// GadgetCloud Forms – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Install the Vault secret resolver when an address is configured,
//     then load layered config (global.yaml → env overlay → GCFORMS_
//     vars → remote client registry); vault: URIs resolve inside Load.
//
//  4. Open the MySQL submissions store and fail fast on a dead pool.
//
//  5. Build the SMTP mailer, webhook client, and notification fan-out.
//
//  6. Assemble the pipeline and chi router, expose Prometheus /metrics,
//     and serve with hardened timeouts.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gadgetcloud-io/forms-service/internal/api"
	"github.com/gadgetcloud-io/forms-service/internal/config"
	"github.com/gadgetcloud-io/forms-service/internal/logger"
	"github.com/gadgetcloud-io/forms-service/internal/notify"
	"github.com/gadgetcloud-io/forms-service/internal/ratelimit"
	"github.com/gadgetcloud-io/forms-service/internal/requestinfo"
	"github.com/gadgetcloud-io/forms-service/internal/server"
	"github.com/gadgetcloud-io/forms-service/internal/store"
	"github.com/gadgetcloud-io/forms-service/internal/submission"
	"github.com/gadgetcloud-io/forms-service/internal/vault"
)

const serverEnvPath = "/usr/local/etc/gc-forms/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx := context.Background()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config: layered files, env, and remote registry ─────────────
	//
	// The resolver is installed first so every load, reloads included,
	// caches a snapshot with vault: URIs already resolved.
	if os.Getenv("VAULT_ADDR") != "" {
		vcli, err := vault.New(ctx)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		config.UseSecretResolver(vcli)
	}

	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	closeWatch, err := config.Watch()
	if err != nil {
		logOut.Warnf("config watcher unavailable: %v", err)
	} else {
		defer closeWatch()
	}

	if cfg.GeoIP.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
			logOut.Warnf("geoip disabled: %v", err)
		}
	}

	//
	// ── 2.  Submissions store ───────────────────────────────────────────
	//
	logOut.Infow("connecting to submissions DB")
	db, err := store.Open(config.Get().Database.DSN)
	if err != nil {
		logOut.Fatalf("connect submissions DB: %v", err)
	}
	defer db.Close()
	logOut.Infow("submissions DB online")

	//
	// ── 3.  Notification fan-out ────────────────────────────────────────
	//
	mailer, err := notify.NewSMTPMailer(config.Get().Email)
	if err != nil {
		logOut.Fatalf("smtp mailer: %v", err)
	}
	notifier := notify.New(mailer, nil)

	//
	// ── 4.  Pipeline and router ─────────────────────────────────────────
	//
	pipe := submission.NewPipeline(config.Get, db, notifier, ratelimit.Allower{}, logOut)
	handler := api.NewHandler(config.Get, pipe)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	//
	// ── 5.  Serve with hardened timeouts ────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, mux)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}
