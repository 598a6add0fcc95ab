// Package main is the Kioku CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kioku-labs/kioku/internal/advice"
	"github.com/kioku-labs/kioku/internal/assistant"
	"github.com/kioku-labs/kioku/internal/chat"
	"github.com/kioku-labs/kioku/internal/config"
	"github.com/kioku-labs/kioku/internal/embedding"
	"github.com/kioku-labs/kioku/internal/keyword"
	"github.com/kioku-labs/kioku/internal/models"
	"github.com/kioku-labs/kioku/internal/planner"
	"github.com/kioku-labs/kioku/internal/rag"
	"github.com/kioku-labs/kioku/internal/records"
	"github.com/kioku-labs/kioku/internal/router"
	"github.com/kioku-labs/kioku/internal/server"
	"github.com/kioku-labs/kioku/internal/store"
	"github.com/kioku-labs/kioku/internal/terms"
	"github.com/kioku-labs/kioku/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kioku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kioku server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
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
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "rebuild":
		runRebuild()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kioku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components bundles everything the assistant needs, for clean teardown.
type components struct {
	Retriever *records.SQLiteRetriever
	Store     *store.SQLiteStore
	Keyword   *keyword.BleveIndex
	Embedder  embedding.Embedder
	Chat      chat.Client
	Terms     *terms.Provider
	Pipeline  *rag.Pipeline
	Assistant *assistant.Assistant
}

// Close tears components down in reverse dependency order.
func (c *components) Close() {
	if c.Chat != nil {
		_ = c.Chat.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Retriever != nil {
		_ = c.Retriever.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	retriever, err := records.NewSQLiteRetriever(cfg.Storage.RecordDatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open record database: %w", err)
	}
	embStore, err := store.NewSQLiteStore(cfg.Storage.EmbeddingDatabasePath)
	if err != nil {
		retriever.Close()
		return nil, fmt.Errorf("failed to open embedding database: %w", err)
	}
	kwIndex, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		embStore.Close()
		retriever.Close()
		return nil, fmt.Errorf("failed to open keyword index: %w", err)
	}

	ollama := embedding.NewOllamaEmbedder(embedding.OllamaConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err := ollama.Ping(context.Background()); err != nil {
		logger.Warn("embedding backend unreachable, searches will degrade to keyword matching", zap.Error(err))
	}
	var embedder embedding.Embedder = ollama
	if cfg.Embedding.CacheSize > 0 {
		embedder = embedding.NewCachedEmbedder(embedder, cfg.Embedding.CacheSize)
	}
	embedder = embedding.NewFallbackEmbedder(embedder, embedding.WithLogger(logger))

	chatClient := chat.NewOllamaClient(chat.OllamaConfig{
		BaseURL:     cfg.Chat.BaseURL,
		Model:       cfg.Chat.Model,
		Timeout:     time.Duration(cfg.Chat.TimeoutSeconds) * time.Second,
		Temperature: cfg.Chat.Temperature,
	})

	provider, err := terms.NewProvider(cfg.Terms.Path)
	if err != nil {
		kwIndex.Close()
		embStore.Close()
		retriever.Close()
		return nil, fmt.Errorf("failed to load term lists: %w", err)
	}

	pipeline := rag.NewPipeline(retriever, embedder, embStore, kwIndex, &cfg.Search, rag.WithLogger(logger))
	p := planner.New(provider)
	r := router.New(p, embedder, chatClient,
		router.WithLogger(logger),
		router.WithThreshold(cfg.Router.ExemplarThreshold),
	)
	engine := advice.NewEngine(provider,
		advice.WithLogger(logger),
		advice.WithChatClient(chatClient),
		advice.WithMaxActionItems(cfg.Advice.MaxActionItems),
	)
	asst := assistant.New(p, r, pipeline, engine,
		assistant.WithLogger(logger),
		assistant.WithChatClient(chatClient),
		assistant.WithStyle(advice.ParseStyle(cfg.Advice.Style)),
	)

	return &components{
		Retriever: retriever,
		Store:     embStore,
		Keyword:   kwIndex,
		Embedder:  embedder,
		Chat:      chatClient,
		Terms:     provider,
		Pipeline:  pipeline,
		Assistant: asst,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := components.Terms.Watch(watchCtx, logger); err != nil {
		logger.Warn("term list watch disabled", zap.Error(err))
	}

	srv := server.NewServer(components.Assistant, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = run the pipeline locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: kioku ask [flags] <question>\n")
		os.Exit(1)
	}
	query := buildQuery(fs.Args())
	if query == "" {
		fmt.Fprintf(os.Stderr, "Usage: kioku ask [flags] <question>\n")
		os.Exit(1)
	}

	var answer *models.Answer
	if *serverURL != "" {
		res, err := askViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		answer = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		answer, err = components.Assistant.Answer(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(answer); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printAnswer(answer)
}

func printAnswer(answer *models.Answer) {
	fmt.Printf("Intent: %s (%s)\n\n", answer.Intent, answer.Strategy)
	switch {
	case answer.Advice != nil:
		fmt.Println(answer.Advice.Advice)
		if len(answer.Advice.ActionItems) > 0 {
			fmt.Println("\nAction items:")
			for _, item := range answer.Advice.ActionItems {
				fmt.Printf("  - %s\n", item)
			}
		}
		if len(answer.Advice.Citations) > 0 {
			fmt.Printf("\nSources: %s\n", strings.Join(answer.Advice.Citations, ", "))
		}
		for _, w := range answer.Advice.SafetyWarnings {
			fmt.Printf("\n⚠ %s\n", w.Message)
		}
		fmt.Printf("\nConfidence: %.2f\n", answer.Advice.Confidence)
	case answer.Text != "":
		fmt.Println(answer.Text)
	case len(answer.Results) == 0:
		fmt.Println("No matching records found.")
	default:
		for i, res := range answer.Results {
			fmt.Printf("%d. %s (similarity %.2f)\n   %s\n", i+1, res.Citation(), res.Similarity, res.Text)
		}
	}
}

func askViaHTTP(serverURL, query string) (*models.Answer, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var answer models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

func runRebuild() {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = rebuild locally)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Post(*serverURL+"/api/v1/index/rebuild", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK:
			fmt.Println("Rebuild started.")
		case http.StatusAccepted:
			fmt.Println("A rebuild is already running.")
		default:
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	onProgress := func(current, total int) {
		if total > 0 {
			fmt.Printf("\rIndexing %d/%d records", current, total)
		}
	}
	_, err = components.Assistant.RebuildIndex(ctx, onProgress)
	if errors.Is(err, store.ErrDimensionMismatch) {
		// The configured embedding model changed dimensions; stored vectors
		// are unusable. Wipe both indexes and rebuild from scratch.
		logger.Warn("embedding dimension changed, wiping stored vectors", zap.Error(err))
		if err := components.Store.DeleteAll(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "\nWipe failed: %v\n", err)
			os.Exit(1)
		}
		if err := components.Keyword.DeleteAll(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "\nWipe failed: %v\n", err)
			os.Exit(1)
		}
		_, err = components.Assistant.RebuildIndex(ctx, onProgress)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nRebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nRebuild complete.")
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read status locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status *models.IndexingStatus
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		status, err = components.Assistant.IndexingStatus(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("Overall coverage: %.0f%%", status.OverallCoverage*100)
	if status.Rebuilding {
		fmt.Print(" (rebuild in progress)")
	}
	fmt.Println()
	for _, domain := range models.AllDomains() {
		cov, ok := status.Domains[domain]
		if !ok {
			continue
		}
		fmt.Printf("  %-20s %d/%d\n", domain, cov.Indexed, cov.Total)
	}
}

func statusViaHTTP(serverURL string) (*models.IndexingStatus, error) {
	resp, err := http.Get(serverURL + "/api/v1/index/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var status models.IndexingStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}

func printUsage() {
	fmt.Println(`Kioku - local personal-data assistant

Usage:
  kioku server  [-config path] [-debug]        Start the HTTP API server
  kioku ask     [flags] <question>             Ask a question over your records
  kioku rebuild [-config path] [-server url]   Re-embed the full record corpus
  kioku status  [flags]                        Show embedding coverage per domain
  kioku version                                Show version

Run "kioku <command> -h" for command flags.`)
}
