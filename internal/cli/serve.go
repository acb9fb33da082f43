package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/codesuggest/internal/adapter/driven/github"
	"github.com/ericfisherdev/codesuggest/internal/adapter/driven/llm"
	sqliteadapter "github.com/ericfisherdev/codesuggest/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/codesuggest/internal/adapter/driving/http"
	"github.com/ericfisherdev/codesuggest/internal/application"
	"github.com/ericfisherdev/codesuggest/internal/config"
	"github.com/ericfisherdev/codesuggest/internal/domain/patch"
	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
	"github.com/ericfisherdev/codesuggest/internal/domain/rules"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()})))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}
}

// runServe wires every adapter and service, serves the API until ctx is
// cancelled and then drains in-flight requests.
func runServe(ctx context.Context, cfg *config.Config) error {
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"ai_provider", cfg.AIProvider,
		"ai_timeout", cfg.AITimeout,
		"credential_encryption", cfg.EncryptionKey != nil,
	)

	// Open database (dual reader/writer with WAL mode) and migrate.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "schema_version", version.Version, "applied", version.Applied)

	// Driven adapters.
	fileStore := sqliteadapter.NewFileRepo(db)
	suggestionStore := sqliteadapter.NewSuggestionRepo(db)
	transactor := sqliteadapter.NewTransactor(db)
	credentialStore, err := sqliteadapter.NewCredentialRepo(db, cfg.EncryptionKey)
	if err != nil {
		return err
	}

	// Model provider, hot-swappable through the credentials endpoint.
	holder := application.NewProviderHolder(nil, "")
	factory := providerFactory(cfg)
	credentialSvc := application.NewCredentialService(credentialStore, holder, factory)
	configureProvider(ctx, cfg, holder, credentialSvc, factory)

	var cache *application.ResultCache
	if cfg.AICacheSize > 0 {
		cache = application.NewResultCache(cfg.AICacheSize)
	}
	generator := application.NewGenerator(holder, cache, application.GeneratorConfig{
		Timeout:        cfg.AITimeout,
		MaxSuggestions: cfg.AIMaxSuggestions,
	})

	// GitHub import. Stored credentials take priority over the environment.
	ghToken := cfg.GitHubToken
	if stored, err := credentialStore.Get(ctx, "github"); err == nil && stored != "" {
		ghToken = stored
	}
	importSvc := application.NewImportService(githubadapter.NewSource(ghToken), fileStore)

	analysisSvc := application.NewAnalysisService(fileStore, transactor, rules.NewEngine(), generator, application.NewBuilder())
	suggestionSvc := application.NewSuggestionService(suggestionStore, transactor, patch.ReplaceFirstOccurrence{})

	apiHandler := httphandler.NewHandler(
		fileStore,
		analysisSvc,
		suggestionSvc,
		importSvc,
		credentialSvc,
		generator,
		holder,
		slog.Default(),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Analysis may wait up to the AI timeout before persisting.
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// providerFactory builds providers for the credential service. The configured
// model name only applies to the configured provider; others use their default.
func providerFactory(cfg *config.Config) application.ProviderFactory {
	return func(ctx context.Context, provider, apiKey string) (driven.ModelProvider, error) {
		model := ""
		if provider == cfg.AIProvider {
			model = cfg.AIModel
		}
		return llm.NewProvider(ctx, provider, apiKey, model)
	}
}

// configureProvider makes the configured provider live at startup. A stored
// key takes priority over CODESUGGEST_AI_API_KEY. Failures leave AI disabled
// rather than aborting startup.
func configureProvider(
	ctx context.Context,
	cfg *config.Config,
	holder *application.ProviderHolder,
	credentials *application.CredentialService,
	factory application.ProviderFactory,
) {
	if !cfg.HasAIProvider() {
		slog.Info("no ai provider configured, rule analysis only")
		return
	}

	if err := credentials.RestoreProvider(ctx, cfg.AIProvider); err != nil && !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		slog.Warn("could not restore stored ai credential", "provider", cfg.AIProvider, "error", err)
	}
	if holder.HasProvider() {
		return
	}

	if cfg.AIAPIKey == "" {
		slog.Warn("ai provider configured without an api key; set one via PUT /api/v1/credentials/{provider}", "provider", cfg.AIProvider)
		return
	}

	p, err := factory(ctx, cfg.AIProvider, cfg.AIAPIKey)
	if err != nil {
		slog.Warn("could not create ai provider", "provider", cfg.AIProvider, "error", err)
		return
	}
	holder.Replace(p, cfg.AIProvider)
	slog.Info("ai provider configured", "provider", cfg.AIProvider)
}
