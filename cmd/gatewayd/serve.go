package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emergent-company/gatewayd/internal/adapter"
	"github.com/emergent-company/gatewayd/internal/auth"
	"github.com/emergent-company/gatewayd/internal/config"
	"github.com/emergent-company/gatewayd/internal/content"
	"github.com/emergent-company/gatewayd/internal/mcp"
	"github.com/emergent-company/gatewayd/internal/router"
	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/store"
)

func newServeCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(mode)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "http", `transport: "http" (REST + MCP) or "stdio" (MCP only)`)
	return cmd
}

// gateway holds everything built from one loaded configuration.
type gateway struct {
	cfg      *config.Config
	schema   *schema.ParsedSchema
	registry *schema.TypeRegistry
	router   *router.Router
	mcpReg   *mcp.Registry
	verifier auth.Verifier
	logger   *slog.Logger
}

// buildGateway parses the schema and wires every component. Parse-time
// errors (InvalidIdentifier, UnresolvedRelation) are fatal here, at
// startup, never at request time.
func buildGateway(cfg *config.Config, logger *slog.Logger) (*gateway, error) {
	parsed, err := schema.Parse(cfg.RawSchema())
	if err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if len(parsed.ModelOrder) == 0 {
		return nil, errors.New("no models declared: add a [schema.<Model>] block to the config")
	}

	types := schema.NewTypeRegistry(parsed, nil)

	var verifier auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	}

	stores, err := storeFactory(cfg)
	if err != nil {
		return nil, err
	}

	ad := adapter.New(cfg.MetaPrefix)
	if cfg.ID.Format == "sqid" {
		ad.IDs = schema.NewSqidFactory(schema.NewCodec(cfg.ID.SqidSeed, cfg.ID.MinLength), types)
	}
	rt, err := router.New(router.Config{
		BasePath:       cfg.REST.BasePath,
		PageSize:       cfg.REST.PageSize,
		MaxPageSize:    cfg.REST.MaxPageSize,
		BaseDomain:     cfg.BaseDomain,
		APIName:        cfg.Server.Name,
		APIVersion:     cfg.Server.Version,
		APIDescription: cfg.Server.Description,
		Auth:           authConfig(cfg),
		Verifier:       verifier,
	}, parsed, ad, stores)
	if err != nil {
		return nil, fmt.Errorf("building router: %w", err)
	}

	reg := mcp.BuildRegistry(parsed, cfg.MCP.Prefix, nil, nil)
	reg.RegisterPrompt(&content.GuidePrompt{APIName: cfg.Server.Name, Schema: parsed})
	reg.RegisterResource(&content.ModelCatalogResource{APIName: cfg.Server.Name, Schema: parsed})
	for _, m := range parsed.OrderedModels() {
		reg.RegisterResource(content.NewModelResource(m))
	}

	return &gateway{
		cfg:      cfg,
		schema:   parsed,
		registry: types,
		router:   rt,
		mcpReg:   reg,
		verifier: verifier,
		logger:   logger,
	}, nil
}

// storeFactory resolves the `database` binding. The in-process memory
// store is built in; anything else is an external Store the deployment
// must provide.
func storeFactory(cfg *config.Config) (store.StoreFactory, error) {
	switch cfg.Database {
	case "", "memory":
		return store.NewMemoryStoreFactory(), nil
	default:
		return nil, fmt.Errorf("unknown database binding %q (built-in: \"memory\")", cfg.Database)
	}
}

func authConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Mode:            auth.Mode(cfg.Auth.Mode),
		TrustSnippets:   cfg.Auth.TrustSnippets,
		TrustUnverified: cfg.Auth.TrustUnverified,
	}
}

func runServe(mode string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger := newLogger(level)
	slog.SetDefault(logger)

	gw, err := buildGateway(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	mcpServer := mcp.NewServer(gw.mcpReg, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger)

	switch mode {
	case "stdio":
		logger.Info("starting gatewayd (stdio MCP)", "version", version, "models", len(gw.schema.ModelOrder))
		return mcpServer.Run(ctx)
	case "http":
		return serveHTTP(ctx, gw, mcpServer, version)
	default:
		return fmt.Errorf("invalid mode %q (must be \"http\" or \"stdio\")", mode)
	}
}

func serveHTTP(ctx context.Context, gw *gateway, mcpServer *mcp.Server, version string) error {
	mux := http.NewServeMux()
	if gw.cfg.MCP.Enabled {
		httpMCP := mcp.NewHTTPServer(mcpServer, gw.cfg.Transport.CORSOrigins, authConfig(gw.cfg), gw.verifier, gw.logger)
		mux.Handle("/mcp", httpMCP.Handler())
		mux.Handle("/health", httpMCP.Handler())
	}
	mux.Handle("/", gw.router.Mux())

	addr := net.JoinHostPort(gw.cfg.Transport.Host, gw.cfg.Transport.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		gw.logger.Info("starting gatewayd",
			"version", version,
			"addr", addr,
			"models", len(gw.schema.ModelOrder),
			"mcp", gw.cfg.MCP.Enabled,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		gw.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
