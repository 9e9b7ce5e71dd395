package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-uischema/pkg/console"
	"github.com/goliatone/go-uischema/pkg/engine"
	"github.com/goliatone/go-uischema/pkg/registry"
)

func main() {
	manifests := flag.String("registry", "", "directory of component manifests (JSON or YAML)")
	openapiPath := flag.String("openapi", "", "OpenAPI document declaring x-uischema-component schemas")
	configPath := flag.String("config", "", "engine config file (JSON or YAML)")
	candidate := flag.String("candidate", "", "candidate document to commit before prompting")
	verbose := flag.Bool("verbose", false, "enable development logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("init logger: %v", err)
		}
		logger = dev
	}
	defer func() { _ = logger.Sync() }()

	reg, err := buildRegistry(ctx, *manifests, *openapiPath)
	if err != nil {
		log.Fatalf("Failed to load registry: %v", err)
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		cfg, err = engine.LoadConfigFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	eng, err := engine.New(reg,
		engine.WithConfig(cfg),
		engine.WithLogger(logger),
		engine.WithMetrics(prometheus.NewRegistry()),
	)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	if *candidate != "" {
		data, err := os.ReadFile(*candidate)
		if err != nil {
			log.Fatalf("Failed to read candidate: %v", err)
		}
		doc, err := eng.ProcessCandidate(ctx, data)
		if err != nil {
			log.Fatalf("Candidate rejected: %v", err)
		}
		fmt.Printf("Committed %s version %d\n", doc.ID, doc.Version)
	}

	session := console.NewSession(eng, console.NewSurveyDriver(), console.WithLogger(logger))
	if err := session.Run(ctx); err != nil {
		log.Fatalf("Session failed: %v", err)
	}
}

func buildRegistry(ctx context.Context, manifestDir, openapiPath string) (*registry.Memory, error) {
	reg := registry.NewDefault()
	if manifestDir != "" {
		defs, err := registry.LoadFS(os.DirFS(manifestDir))
		if err != nil {
			return nil, err
		}
		if err := reg.RegisterAll(defs); err != nil {
			return nil, err
		}
	}
	if openapiPath != "" {
		data, err := os.ReadFile(openapiPath)
		if err != nil {
			return nil, fmt.Errorf("read openapi document: %w", err)
		}
		defs, err := registry.LoadOpenAPI(ctx, data)
		if err != nil {
			return nil, err
		}
		if err := reg.RegisterAll(defs); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
