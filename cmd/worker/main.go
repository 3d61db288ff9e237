package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	temporalclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/config"
	neo4jstore "github.com/vishalvkulkarni-tech/MBD-Designer/internal/graphstore/neo4j"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/history"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm/anthropic"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm/gemini"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm/openai"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/logging"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/pipeline"
	temporalmod "github.com/vishalvkulkarni-tech/MBD-Designer/internal/temporal"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/vector"
	qdrantstore "github.com/vishalvkulkarni-tech/MBD-Designer/internal/vector/qdrant"
)

func main() {
	configPath := "configs/mbd.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

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

	provider, err := factory.Create(llm.ProviderConfig{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    2 * time.Minute,
		MaxRetries: 3,
	})
	if err != nil {
		log.Fatalf("creating oracle provider: %v", err)
	}
	if provider == nil {
		log.Fatal("worker requires an oracle provider; set llm.provider")
	}

	session := &pipeline.Session{
		LLM:         llm.WithRateLimit(provider, llm.DefaultRateLimitConfig()),
		Log:         logger,
		Temperature: cfg.Temperature(),
	}

	if cfg.Graph.URI != "" {
		repo, err := neo4jstore.New(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password)
		if err != nil {
			logger.Warn("graph store disabled", zap.Error(err))
		} else {
			defer repo.Close(ctx)
			session.Graph = repo
		}
	}
	if cfg.Vector.Host != "" {
		repo, err := qdrantstore.New(ctx, cfg.Vector.Host, cfg.Vector.Port, cfg.Vector.Collection)
		if err != nil {
			logger.Warn("similarity index disabled", zap.Error(err))
		} else {
			defer repo.Close()
			session.Vector = vector.NewIndexer(provider, repo)
		}
	}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
		} else {
			defer store.Close()
			session.History = store
		}
	}

	temporalmod.SetDependencies(&temporalmod.Dependencies{Session: session})

	c, err := temporalclient.Dial(temporalclient.Options{
		HostPort:  cfg.Temporal.Host,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w, err := temporalmod.StartWorker(c, cfg.Temporal.TaskQueue)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}

	fmt.Printf("Worker started on task queue: %s\n", cfg.Temporal.TaskQueue)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	w.Stop()
	fmt.Println("Worker stopped")
}
