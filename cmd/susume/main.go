// Package main is the susume CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/catalog"
	"github.com/hyperjump/susume/internal/cli"
	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/enrich"
	"github.com/hyperjump/susume/internal/keyword"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/recommender"
	"github.com/hyperjump/susume/internal/server"
	"github.com/hyperjump/susume/internal/storage"
	"github.com/hyperjump/susume/internal/watcher"
	"github.com/hyperjump/susume/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/susume/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory takes precedence so commands run from the project dir
// pick up the project's config. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "train":
		runTrain()
	case "recommend":
		runRecommend()
	case "lookup":
		runLookup()
	case "enrich":
		runEnrich()
	case "serve":
		runServe()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("susume version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// newEmbedder builds the configured embedder: ONNX when a model path is set,
// otherwise the deterministic mock (useful for development and tests).
func newEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	if cfg.Embedding.ModelPath != "" {
		emb, err := embedding.NewONNXEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.Dimensions,
			cfg.Embedding.MaxTokens,
			cfg.Embedding.BatchSize,
			cfg.Embedding.CacheSize,
		)
		if err == nil {
			return emb
		}
		logger.Warn("onnx embedder unavailable, falling back to mock", zap.Error(err))
	}
	return embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
}

func setup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runTrain() {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolved, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolved))

	ctx := context.Background()
	started := time.Now()

	loader := catalog.NewLoader(cfg.Catalog.Path, cfg.Catalog.Genres, catalog.WithLogger(logger))
	records, err := loader.LoadRecords()
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}
	catalogItems := make([]models.TrainingItem, 0, len(records))
	assembler := loader.Assembler()
	for _, rec := range records {
		if item, ok := assembler.Assemble(rec); ok {
			catalogItems = append(catalogItems, item)
		}
	}
	logger.Info("catalog loaded", zap.Int("records", len(records)), zap.Int("items", len(catalogItems)))

	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer st.Close()
	extra, err := st.ListSupplemental(ctx)
	if err != nil {
		logger.Fatal("list supplemental", zap.Error(err))
	}
	supplemental := make([]models.TrainingItem, 0, len(extra))
	for _, rec := range extra {
		supplemental = append(supplemental, models.TrainingItem{ID: rec.ID, Text: rec.Text})
	}
	logger.Info("supplemental loaded", zap.Int("items", len(supplemental)))

	embedder := newEmbedder(cfg, logger)
	defer embedder.Close()
	session := recommender.NewSession(embedder, recommender.WithLogger(logger))
	if err := session.Fit(ctx, catalogItems, supplemental); err != nil {
		logger.Fatal("fit", zap.Error(err))
	}
	if err := session.Save(cfg.Storage.ArtifactsDir); err != nil {
		logger.Fatal("save artifacts", zap.Error(err))
	}
	logger.Info("artifacts saved",
		zap.String("dir", cfg.Storage.ArtifactsDir),
		zap.Int("vectors", session.Size()),
		zap.Int("dimensions", session.Dimensions()),
	)

	if err := rebuildTitleIndex(cfg.Storage.TitleIndexPath, records); err != nil {
		logger.Fatal("rebuild title index", zap.Error(err))
	}
	logger.Info("title index rebuilt", zap.String("path", cfg.Storage.TitleIndexPath), zap.Int("titles", len(records)))

	run := &models.TrainRun{
		CatalogItems: len(catalogItems),
		ExtraItems:   len(supplemental),
		CorpusItems:  session.Size(),
		Dimensions:   session.Dimensions(),
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err := st.RecordTrainRun(ctx, run); err != nil {
		logger.Warn("record train run", zap.Error(err))
	}
	logger.Info("train finished", zap.String("run_id", run.ID), zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)))
}

// rebuildTitleIndex replaces the title index wholesale, matching the
// rebuild-everything train pipeline.
func rebuildTitleIndex(path string, records []*models.CatalogRecord) error {
	if path == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	idx, err := keyword.NewTitleIndex(path)
	if err != nil {
		return err
	}
	defer idx.Close()
	batch := make([]models.CatalogRecord, 0, len(records))
	for _, rec := range records {
		batch = append(batch, *rec)
	}
	return idx.AddBatch(batch)
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	k := fs.Int("k", 0, "number of neighbours (default from config)")
	format := fs.String("format", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: susume recommend [flags] <text>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	text := strings.Join(fs.Args(), " ")

	cfg, _, logger := setup(*configPath, false)
	defer logger.Sync()

	embedder := newEmbedder(cfg, logger)
	defer embedder.Close()
	session := recommender.NewSession(embedder, recommender.WithLogger(logger))
	if err := session.Load(cfg.Storage.ArtifactsDir); err != nil {
		logger.Fatal("load artifacts (run train first)", zap.Error(err))
	}

	if *k <= 0 {
		*k = cfg.Recommend.DefaultK
	}
	if cfg.Recommend.MaxK > 0 && *k > cfg.Recommend.MaxK {
		*k = cfg.Recommend.MaxK
	}
	start := time.Now()
	results, err := session.Recommend(context.Background(), text, *k)
	if err != nil {
		logger.Fatal("recommend", zap.Error(err))
	}
	response := &models.RecommendResponse{
		Query:       text,
		Results:     results,
		QueryTimeMS: time.Since(start).Milliseconds(),
	}
	if err := cli.WriteRecommendations(os.Stdout, response, cli.OutputFormat(*format)); err != nil {
		logger.Fatal("write output", zap.Error(err))
	}
}

func runLookup() {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 10, "maximum matches")
	fuzzy := fs.Bool("fuzzy", false, "tolerate typos in the title")
	format := fs.String("format", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: susume lookup [flags] <title>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	title := strings.Join(fs.Args(), " ")

	cfg, _, logger := setup(*configPath, false)
	defer logger.Sync()

	idx, err := keyword.NewTitleIndex(cfg.Storage.TitleIndexPath)
	if err != nil {
		logger.Fatal("open title index (run train first)", zap.Error(err))
	}
	defer idx.Close()
	results, err := idx.Search(title, *limit, *fuzzy)
	if err != nil {
		logger.Fatal("lookup", zap.Error(err))
	}
	if err := cli.WriteLookupResults(os.Stdout, title, results, cli.OutputFormat(*format)); err != nil {
		logger.Fatal("write output", zap.Error(err))
	}
}

func runEnrich() {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()
	if cfg.TMDB.AccessToken == "" {
		logger.Fatal("TMDB_ACCESS_TOKEN is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer st.Close()

	entries, err := st.ListWatchlist(ctx)
	if err != nil {
		logger.Fatal("list watchlist", zap.Error(err))
	}
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.TMDBID > 0 {
			ids = append(ids, e.TMDBID)
		}
	}
	logger.Info("enriching watchlist", zap.Int("movies", len(ids)))

	client := enrich.NewClient(cfg.TMDB, enrich.WithLogger(logger))
	records, err := client.EnrichAll(ctx, ids)
	if err != nil {
		logger.Fatal("enrich", zap.Error(err))
	}
	if err := st.SaveSupplemental(ctx, records); err != nil {
		logger.Fatal("save supplemental", zap.Error(err))
	}
	logger.Info("enrich finished", zap.Int("saved", len(records)), zap.Int("skipped", len(ids)-len(records)))
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolved, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolved))

	embedder := newEmbedder(cfg, logger)
	defer embedder.Close()
	session := recommender.NewSession(embedder, recommender.WithLogger(logger))
	if err := session.Load(cfg.Storage.ArtifactsDir); err != nil {
		logger.Warn("no artifacts loaded, serving unfitted until next train", zap.Error(err))
	} else {
		logger.Info("artifacts loaded", zap.Int("vectors", session.Size()), zap.Int("dimensions", session.Dimensions()))
	}

	var titles *keyword.TitleIndex
	if cfg.Storage.TitleIndexPath != "" {
		if _, err := os.Stat(cfg.Storage.TitleIndexPath); err == nil {
			titles, err = keyword.NewTitleIndex(cfg.Storage.TitleIndexPath)
			if err != nil {
				logger.Warn("title index unavailable", zap.Error(err))
			} else {
				defer titles.Close()
			}
		}
	}

	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Warn("storage unavailable", zap.Error(err))
		st = nil
	} else {
		defer st.Close()
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	watchOpts := []watcher.Option{}
	if cfg.Debug || *debug {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	w := watcher.NewWatcher(cfg.Storage.ArtifactsDir, func() {
		if err := session.Load(cfg.Storage.ArtifactsDir); err != nil {
			logger.Warn("artifact reload failed", zap.Error(err))
			return
		}
		logger.Info("artifacts reloaded", zap.Int("vectors", session.Size()))
	}, watchOpts...)
	if err := w.Start(watchCtx); err != nil {
		logger.Fatal("start artifact watcher", zap.Error(err))
	}
	defer w.Stop()

	var srv *server.Server
	if st != nil {
		srv = server.NewServer(session, titles, st, cfg, logger)
	} else {
		srv = server.NewServer(session, titles, nil, cfg, logger)
	}
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, resolved, logger := setup(*configPath, false)
	defer logger.Sync()

	ctx := context.Background()
	fmt.Printf("config:         %s\n", resolved)
	fmt.Printf("artifacts dir:  %s\n", cfg.Storage.ArtifactsDir)

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	session := recommender.NewSession(embedder)
	if err := session.Load(cfg.Storage.ArtifactsDir); err != nil {
		fmt.Printf("artifacts:      not loaded (%v)\n", err)
	} else {
		fmt.Printf("artifacts:      %d vectors x %d dimensions\n", session.Size(), session.Dimensions())
	}

	if st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath); err == nil {
		defer st.Close()
		if n, err := st.CountSupplemental(ctx); err == nil {
			fmt.Printf("supplemental:   %d records\n", n)
		}
		if run, err := st.LastTrainRun(ctx); err == nil && run != nil {
			fmt.Printf("last train run: %s (%d corpus items, finished %s)\n",
				run.ID, run.CorpusItems, run.FinishedAt.Format(time.RFC3339))
		}
	}

	if usage, err := storage.DiskUsageBytes(
		cfg.Storage.DatabasePath,
		cfg.Storage.ArtifactsDir,
		cfg.Storage.TitleIndexPath,
	); err == nil {
		fmt.Printf("disk usage:     %.1f MiB\n", float64(usage)/(1024*1024))
	}
}

func printUsage() {
	fmt.Print(`susume - movie similarity recommender

Usage:
  susume <command> [flags]

Commands:
  train       Build embeddings, vector index, and title index from the catalog
  recommend   Query the trained model for similar movies
  lookup      Resolve a movie title to its catalog id
  enrich      Fetch supplemental metadata for watchlist movies from TMDB
  serve       Run the HTTP API (reloads artifacts on retrain)
  status      Show model and storage status
  version     Print version
  help        Show this help

Run 'susume <command> -h' for command flags.
`)
}
