package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/itinera/internal/advice"
	"github.com/alexanderramin/itinera/internal/cli"
	"github.com/alexanderramin/itinera/internal/config"
	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/httpapi"
	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/service"
	"github.com/alexanderramin/itinera/internal/sourcing"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(os.Stderr)
	}
	var llmClient llm.LLMClient
	if cfg.LLM.Enabled {
		llmClient = llm.NewClient(cfg.LLM, observer)
	}

	deps := service.NewSQLiteDeps(database)
	deps.Options.ActivitySlots = cfg.Optimizer.ActivitySlots
	deps.Options.ImprovementMargin = cfg.Optimizer.ImprovementMargin
	deps.Options.WeightTolerance = cfg.Optimizer.WeightTolerance
	deps.Metrics = service.MustNewMetrics(prometheus.DefaultRegisterer)

	source, err := newQuoteSource(cfg, llmClient)
	if err != nil {
		return err
	}
	deps.Source = source
	if llmClient != nil {
		deps.Suggester = sourcing.NewLLMSource(llmClient)
	}

	obs := service.NewSlogUseCaseObserver(logger)
	app := &cli.App{
		Trips:    service.NewTripService(deps, obs),
		Optimize: service.NewOptimizeService(deps, obs),
		Replan:   service.NewReplanService(deps, obs),
		Segments: service.NewSegmentService(deps, obs),
		Advisor: advice.NewAdvisor(llmClient, advice.CacheConfig{
			MaxSize: cfg.Advice.CacheSize,
			TTL:     cfg.Advice.CacheTTL,
		}),
		Addr: cfg.HTTP.Addr,
	}

	gin.SetMode(gin.ReleaseMode)
	app.Handler = httpapi.NewRouter(httpapi.Services{
		Trips:    app.Trips,
		Optimize: app.Optimize,
		Replan:   app.Replan,
		Segments: app.Segments,
	}, httpapi.Options{
		Logger:         logger,
		Gatherer:       prometheus.DefaultGatherer,
		AllowedOrigins: cfg.HTTP.CORSOrigins,
	})

	app.IsTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// newLogger writes to stderr so command output on stdout stays clean.
func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// newQuoteSource chains the catalog ahead of the language model. Both are
// optional; nil means trips must already carry quotes.
func newQuoteSource(cfg config.Config, client llm.LLMClient) (sourcing.QuoteSource, error) {
	var chain sourcing.Chain
	if cfg.Sourcing.CatalogPath != "" {
		catalog, err := sourcing.LoadCatalog(cfg.Sourcing.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("loading quote catalog: %w", err)
		}
		chain = append(chain, catalog)
	}
	if cfg.Sourcing.UseLLM && client != nil {
		chain = append(chain, sourcing.NewLLMSource(client))
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return chain, nil
}
