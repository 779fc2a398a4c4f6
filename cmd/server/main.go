package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/service"
	"github.com/tallyapp/tally/internal/storage"
	"github.com/tallyapp/tally/internal/storage/memory"
	"github.com/tallyapp/tally/internal/storage/sqlite"
	"github.com/tallyapp/tally/pkg/logging"
)

func initConfig() {
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("db.path", "DB_PATH")
	viper.BindEnv("auth.mode", "AUTH_MODE")
	viper.BindEnv("auth.secret", "AUTH_SECRET")
	viper.BindEnv("auth.editors", "AUTH_EDITORS")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("db.path", "./data/tally.db")
	viper.SetDefault("auth.mode", "secret")
	viper.SetDefault("jwt.expiry_hours", 24)

	if err := viper.ReadInConfig(); err != nil {
		slog.Debug("No config file found, using env and defaults", "error", err)
	}
}

// newStore picks the persistence backend: SQLite at the configured path,
// or the in-memory store when the path is explicitly emptied.
func newStore() (storage.Store, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		slog.Warn("No database path configured, ledger will not survive restarts")
		return memory.New(), nil
	}
	return sqlite.New(dbPath)
}

// newAuthority builds the configured auth strategy. The ledger core never
// knows which one is active.
func newAuthority(store storage.Store) (auth.Authority, *auth.AllowlistAuthority, error) {
	switch mode := viper.GetString("auth.mode"); mode {
	case "secret":
		authority, err := auth.NewSecretAuthority(viper.GetString("auth.secret"))
		if err != nil {
			return nil, nil, fmt.Errorf("auth mode %q: %w", mode, err)
		}
		return authority, nil, nil
	case "allowlist":
		allowlist := auth.NewAllowlistAuthority(store, viper.GetStringSlice("auth.editors"))
		if err := allowlist.Load(context.Background()); err != nil {
			return nil, nil, fmt.Errorf("auth mode %q: %w", mode, err)
		}
		return allowlist, allowlist, nil
	default:
		return nil, nil, fmt.Errorf("unknown auth.mode %q (want secret or allowlist)", mode)
	}
}

func main() {
	logging.Setup()
	initConfig()

	store, err := newStore()
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	l := ledger.New(store)
	if err := l.Load(context.Background()); err != nil {
		slog.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}
	slog.Info("Ledger loaded", "participants", len(l.ListParticipants()))

	authority, allowlist, err := newAuthority(store)
	if err != nil {
		slog.Error("Failed to initialize auth", "error", err)
		os.Exit(1)
	}
	gate := auth.NewGate(authority)

	jwtSecret := viper.GetString("jwt.secret_key")
	if jwtSecret == "" {
		slog.Error("jwt.secret_key must be configured")
		os.Exit(1)
	}
	jwtManager := auth.NewJWTManager(jwtSecret, time.Duration(viper.GetInt("jwt.expiry_hours"))*time.Hour)

	handler := service.NewRouter(
		service.NewLedgerService(l),
		service.NewSessionService(gate, jwtManager, allowlist),
		jwtManager,
		gate,
	)

	// HTTP/2 without TLS, for clients that negotiate h2c
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", viper.GetInt("server.port"))
	server := &http.Server{
		Addr:         addr,
		Handler:      h2cHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "address", addr, "auth_mode", viper.GetString("auth.mode"))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
