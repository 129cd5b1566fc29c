// Package main is the Alexandria embeddings service CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/DarlingtonDeveloper/Alexandria/internal/cli"
	"github.com/DarlingtonDeveloper/Alexandria/internal/config"
	"github.com/DarlingtonDeveloper/Alexandria/internal/embedding"
	"github.com/DarlingtonDeveloper/Alexandria/internal/models"
	"github.com/DarlingtonDeveloper/Alexandria/internal/observability"
	"github.com/DarlingtonDeveloper/Alexandria/internal/server"
	"github.com/DarlingtonDeveloper/Alexandria/pkg/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/alexandria-embeddings/config.yaml"

const defaultServerURL = "http://localhost:8501"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used. When neither exists, the service runs on environment variables and
// defaults alone. Returns the config and the path that was actually loaded
// (empty for environment-only).
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
		if _, statErr := os.Stat(path); statErr != nil {
			cfg, envErr := config.FromEnv()
			if envErr != nil {
				return nil, "", envErr
			}
			return cfg, "", nil
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
	case "embed":
		runEmbed()
	case "info":
		runInfo()
	case "config":
		runConfig()
	case "version", "--version", "-v":
		fmt.Printf("alexandria-embeddings version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (per-request logs, tokenizer choice, etc.)")
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
		zap.String("provider", cfg.Embedding.Provider),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	metrics, err := observability.Setup(cfg.Metrics.EnabledOrDefault())
	if err != nil {
		logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	srv := server.NewServer(components.Embedder, cfg, logger, metrics, version)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = srv.Stop(ctx)
}

// embedArgsReorder moves any flags (and their values) that appear after the
// texts to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so
// "alexandria-embeddings embed \"some text\" -output json" would otherwise
// leave -output unparsed.
func embedArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printEmbedUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: alexandria-embeddings embed [flags] <text> [<text> ...]\n\n")
	fmt.Fprintf(fs.Output(), "Each positional argument is embedded as one text; quote multi-word texts.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  alexandria-embeddings embed "machine learning"
  alexandria-embeddings embed "first text" "second text"
  alexandria-embeddings embed --output json "query text"
  alexandria-embeddings embed --normalize=false "raw vector please"
  alexandria-embeddings embed --server "" "offline, loads the model directly"
`)
}

func runEmbed() {
	embedArgs := embedArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = load the model directly when server is not running)")
	normalize := fs.Bool("normalize", true, "L2-normalize the returned vectors (unset = server/config default)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printEmbedUsage(fs) }
	_ = fs.Parse(embedArgs)

	if fs.NArg() < 1 {
		printEmbedUsage(fs)
		os.Exit(1)
	}
	texts := fs.Args()

	// Only an explicit -normalize flag overrides the server or config default.
	var normalizeOverride *bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "normalize" {
			normalizeOverride = normalize
		}
	})

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	if *serverURL != "" {
		request := &models.EmbedRequest{Texts: texts, Normalize: normalizeOverride}
		response, err := embedViaHTTP(*serverURL, request)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Embed failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteEmbeddings(os.Stdout, texts, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct mode (when server is not running): load the model in-process.
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
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	vectors, err := components.Embedder.EmbedBatch(context.Background(), texts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embed failed: %v\n", err)
		os.Exit(1)
	}
	doNormalize := cfg.Embedding.NormalizeOrDefault()
	if normalizeOverride != nil {
		doNormalize = *normalizeOverride
	}
	if doNormalize {
		for _, vec := range vectors {
			utils.NormalizeL2(vec)
		}
	}
	response := &models.EmbedResponse{Embeddings: vectors}
	if err := cli.WriteEmbeddings(os.Stdout, texts, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func embedViaHTTP(serverURL string, request *models.EmbedRequest) (*models.EmbedResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/embed", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.EmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runInfo() {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = load the model directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}

	var info *models.ServiceInfo
	if *serverURL != "" {
		res, err := infoViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Info failed: %v\n", err)
			os.Exit(1)
		}
		info = res
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
		info = &models.ServiceInfo{
			Model:      components.Embedder.Model(),
			Provider:   components.Embedder.Name(),
			Dimensions: components.Embedder.Dimensions(),
			MaxTokens:  cfg.Embedding.MaxTokens,
			Normalize:  cfg.Embedding.NormalizeOrDefault(),
			Version:    version,
		}
	}

	if err := cli.WriteServiceInfo(os.Stdout, info, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func infoViaHTTP(serverURL string) (*models.ServiceInfo, error) {
	resp, err := http.Get(serverURL + "/info")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var info models.ServiceInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &info, nil
}

func runConfig() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: alexandria-embeddings config <init|show> [path]")
		fmt.Println("  alexandria-embeddings config init [path]  Write a default config file")
		fmt.Println("  alexandria-embeddings config show [path]  Print the effective config")
		os.Exit(1)
	}
	sub := os.Args[2]
	switch sub {
	case "init":
		path := defaultConfigPath
		if len(os.Args) > 3 {
			path = os.Args[3]
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Config already exists: %s\n", path)
			os.Exit(1)
		}
		cfg := &config.Config{}
		config.ApplyDefaults(cfg)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Printf("Failed to create config directory: %v\n", err)
			os.Exit(1)
		}
		if err := config.Save(path, cfg); err != nil {
			fmt.Printf("Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config: %s\n", path)
	case "show":
		path := defaultConfigPath
		if len(os.Args) > 3 {
			path = os.Args[3]
		}
		cfg, resolved, err := loadConfig(path)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		if resolved == "" {
			resolved = "(environment and defaults)"
		}
		fmt.Printf("# source: %s\n", resolved)
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Printf("Failed to marshal config: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
	default:
		fmt.Printf("Unknown config subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Embedder embedding.Embedder
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	opts := embedding.Options{
		ModelPath:   cfg.Embedding.ModelPath,
		VocabPath:   cfg.Embedding.VocabPath,
		Model:       cfg.Embedding.Model,
		Dimensions:  cfg.Embedding.Dimensions,
		MaxTokens:   cfg.Embedding.MaxTokens,
		APIKey:      cfg.OpenAI.APIKey,
		OpenAIModel: cfg.OpenAI.Model,
	}
	embedder, err := embedding.NewEmbedder(cfg.Embedding.Provider, opts)
	if err != nil {
		// Fall back to the hash provider so the service stays available
		// (e.g. ONNX runtime or model file missing).
		if logger != nil {
			logger.Warn("failed to create embedder, falling back to hash provider",
				zap.String("requested_provider", cfg.Embedding.Provider),
				zap.Error(err))
		}
		embedder = embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	}
	if logger != nil {
		logger.Info("embedder initialized",
			zap.String("provider", embedder.Name()),
			zap.String("model", embedder.Model()),
			zap.Int("dimensions", embedder.Dimensions()))
	}

	return &Components{Embedder: embedder}, nil
}

func printUsage() {
	fmt.Println(`alexandria-embeddings - Local text embeddings service

Usage:
  alexandria-embeddings server [flags]            Start the HTTP server
  alexandria-embeddings embed [flags] <text>...   Embed one or more texts
  alexandria-embeddings info [flags]              Show model and service info
  alexandria-embeddings config <init|show>        Manage the config file
  alexandria-embeddings version                   Show version
  alexandria-embeddings help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/alexandria-embeddings/config.yaml)
  --debug            Enable debug logging (per-request logs, tokenizer choice, etc.)

Embed Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8501). Use empty (--server "") to load the model directly when the server is not running.
  --normalize        L2-normalize returned vectors. Only an explicit flag overrides the server default.
  --output string    Output format: text or json (default: text)

Info Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8501). Use empty (--server "") for direct mode.
  --output string    Output format: text or json (default: text)

Environment:
  EMBEDDINGS_PROVIDER    onnx (default), openai, or hash
  EMBEDDINGS_MODEL_PATH  Path to the ONNX model file
  EMBEDDINGS_VOCAB_PATH  Path to a WordPiece vocab.txt (optional)
  EMBEDDINGS_HOST        Listen host (default: 0.0.0.0)
  EMBEDDINGS_PORT        Listen port (default: 8501)
  OPENAI_API_KEY         API key for the openai provider

Examples:
  alexandria-embeddings server
  alexandria-embeddings embed "machine learning algorithms"
  alexandria-embeddings embed --output json "first" "second"
  alexandria-embeddings info
  alexandria-embeddings config init ./config.yaml`)
}
