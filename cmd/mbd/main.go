package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/config"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/docs"
	neo4jstore "github.com/vishalvkulkarni-tech/MBD-Designer/internal/graphstore/neo4j"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/history"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm/anthropic"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm/gemini"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm/openai"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/logging"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/observability"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/pipeline"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/prompt"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/render/matlab"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/render/mermaid"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/vector"
	qdrantstore "github.com/vishalvkulkarni-tech/MBD-Designer/internal/vector/qdrant"
)

func main() {
	var (
		configPath string
		outputDir  string
		asReqs     bool
		liveURL    bool
		limit      int
	)

	rootCmd := &cobra.Command{
		Use:   "mbd",
		Short: "Convert legacy control code and requirements into Simulink architecture models",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/mbd.yaml", "Config file path")

	generateCmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Generate an architecture graph, diagram, and build script from input files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(configPath, args, outputDir, asReqs, liveURL)
		},
	}
	generateCmd.Flags().StringVar(&outputDir, "output", ".", "Output directory for artifacts")
	generateCmd.Flags().BoolVar(&asReqs, "requirements", false, "Treat inputs as requirement documents regardless of extension")
	generateCmd.Flags().BoolVar(&liveURL, "live-url", false, "Print a hosted renderer URL for the diagram")

	renderCmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Re-render diagram and build script from a saved architecture graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], outputDir, liveURL)
		},
	}
	renderCmd.Flags().StringVar(&outputDir, "output", ".", "Output directory for artifacts")
	renderCmd.Flags().BoolVar(&liveURL, "live-url", false, "Print a hosted renderer URL for the diagram")

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List available oracle providers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available oracle providers:")
			fmt.Println()
			for name, url := range llm.KnownProviders {
				fmt.Printf("  %-12s %s\n", name, url)
			}
			fmt.Println("  custom       (set base_url to any OpenAI-compatible endpoint)")
			fmt.Println("  none         (re-render saved graphs only)")
			fmt.Println()
			fmt.Println("Configure in mbd.yaml or via environment:")
			fmt.Println("  MBD_LLM_PROVIDER=gemini")
			fmt.Println("  MBD_LLM_API_KEY=...")
			fmt.Println("  MBD_LLM_MODEL=gemini-1.5-pro")
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(configPath, limit)
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")

	rootCmd.AddCommand(generateCmd, renderCmd, providersCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(configPath string, inputs []string, outputDir string, asReqs, liveURL bool) error {
	ctx := context.Background()

	cfg := loadConfig(configPath)
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	shutdown, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("generate requires an oracle provider; configure llm.provider or use 'mbd render' for saved graphs")
	}
	fmt.Printf("Using oracle provider: %s\n", provider.Name())

	session := &pipeline.Session{
		LLM:         llm.WithRateLimit(provider, llm.DefaultRateLimitConfig()),
		Log:         log,
		Temperature: cfg.Temperature(),
	}

	if cfg.Graph.URI != "" {
		repo, err := neo4jstore.New(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password)
		if err != nil {
			log.Warn("graph store disabled", zap.Error(err))
		} else {
			defer repo.Close(ctx)
			session.Graph = repo
		}
	}
	if cfg.Vector.Host != "" {
		repo, err := qdrantstore.New(ctx, cfg.Vector.Host, cfg.Vector.Port, cfg.Vector.Collection)
		if err != nil {
			log.Warn("similarity index disabled", zap.Error(err))
		} else {
			defer repo.Close()
			session.Vector = vector.NewIndexer(provider, repo)
		}
	}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Warn("history disabled", zap.Error(err))
		} else {
			defer store.Close()
			session.History = store
		}
	}

	text, loadErrs := docs.LoadInputs(inputs)
	for _, e := range loadErrs {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", e)
	}
	if text == "" {
		return fmt.Errorf("no usable input")
	}

	kind := prompt.DetectKind(inputs)
	if asReqs {
		kind = prompt.KindRequirements
	}
	fmt.Printf("Input interpreted as: %s\n", kind)

	result, err := session.Run(ctx, pipeline.Input{Kind: kind, Text: text})
	if err != nil {
		return fmt.Errorf("conversion failed after %d attempt(s): %w", result.Attempts, err)
	}

	return writeArtifacts(result, outputDir, liveURL)
}

func runRender(graphPath, outputDir string, liveURL bool) error {
	data, err := os.ReadFile(graphPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", graphPath, err)
	}

	session := &pipeline.Session{}
	result, err := session.RunFromGraph(context.Background(), data)
	if err != nil {
		return fmt.Errorf("invalid architecture graph: %w", err)
	}
	return writeArtifacts(result, outputDir, liveURL)
}

func runHistory(configPath string, limit int) error {
	cfg := loadConfig(configPath)
	if cfg.History.Path == "" {
		return fmt.Errorf("history.path is not configured")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %-6s  %d attempt(s)  %s",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Status, run.Attempts, run.SystemName)
		if run.Error != "" {
			line += "  (" + run.Error + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load failed (%v), using defaults\n", err)
		cfg = &config.Config{}
	}
	return cfg
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	factory := llm.NewFactory()
	factory.Register("gemini", func(c llm.ProviderConfig) (llm.Provider, error) {
		return gemini.New(c.APIKey, c.Model, c.BaseURL), nil
	})
	factory.Register("anthropic", func(c llm.ProviderConfig) (llm.Provider, error) {
		return anthropic.New(c.APIKey, c.Model, c.BaseURL), nil
	})
	factory.Register("openai", func(c llm.ProviderConfig) (llm.Provider, error) {
		return openai.New(c.APIKey, c.Model, c.BaseURL, c.EmbedModel), nil
	})
	// OpenAI-compatible presets share the openai constructor.
	for _, p := range []struct{ name, url string }{
		{"groq", llm.KnownProviders["groq"]},
		{"ollama", llm.KnownProviders["ollama"]},
		{"together", llm.KnownProviders["together"]},
		{"deepseek", llm.KnownProviders["deepseek"]},
		{"custom", ""},
	} {
		p := p
		factory.Register(p.name, func(c llm.ProviderConfig) (llm.Provider, error) {
			base := c.BaseURL
			if base == "" {
				base = p.url
			}
			return openai.New(c.APIKey, c.Model, base, ""), nil
		})
	}

	return factory.Create(llm.ProviderConfig{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    2 * time.Minute,
		MaxRetries: 3,
	})
}

func writeArtifacts(result *pipeline.RunResult, outputDir string, liveURL bool) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	base := matlab.SanitizeModelName(result.Graph.SystemName)
	artifacts := []struct {
		name string
		data []byte
	}{
		{base + ".json", result.GraphJSON},
		{base + ".mmd", []byte(result.Diagram)},
		{base + ".m", []byte(result.Script)},
	}
	for _, a := range artifacts {
		path := filepath.Join(outputDir, a.name)
		if err := os.WriteFile(path, a.data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "Diagnostic: %s\n", d)
	}

	if liveURL {
		url, err := mermaid.LiveURL(result.Diagram)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Printf("Diagram preview: %s\n", url)
		}
	}
	return nil
}
