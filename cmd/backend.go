package cmd

import (
	"context"
	"fmt"

	"javadocgen/internal/adapter/outbound/cache"
	"javadocgen/internal/adapter/outbound/chatcompletion"
	"javadocgen/internal/adapter/outbound/formatter"
	"javadocgen/internal/adapter/outbound/gemini"
	"javadocgen/internal/adapter/outbound/mock"
	"javadocgen/internal/adapter/outbound/treesitter"
	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/application/service"
	"javadocgen/internal/config"
	domainservice "javadocgen/internal/domain/service"
	"javadocgen/internal/port/outbound"
)

// newCommentGenerator builds the configured backend, wrapped in the
// generation cache when cache_size is positive.
func newCommentGenerator(ctx context.Context, cfg *config.Config) (outbound.CommentGenerator, error) {
	var (
		gen outbound.CommentGenerator
		err error
	)

	switch cfg.Backend.Provider {
	case config.ProviderChat:
		gen, err = chatcompletion.NewClient(chatcompletion.ClientConfig{
			APIKey:      cfg.Backend.APIKey,
			BaseURL:     cfg.Backend.BaseURL,
			Model:       cfg.Backend.Model,
			Temperature: cfg.Backend.Temperature,
			Timeout:     cfg.Backend.Timeout,
			MaxRetries:  cfg.Backend.MaxRetries,
			StopPath:    cfg.Backend.StopPath,
		})
	case config.ProviderGemini:
		gen, err = gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey:      cfg.Backend.APIKey,
			BaseURL:     cfg.Backend.BaseURL,
			Model:       cfg.Backend.Model,
			Temperature: cfg.Backend.Temperature,
			Timeout:     cfg.Backend.Timeout,
			MaxRetries:  cfg.Backend.MaxRetries,
		})
	case config.ProviderMock:
		gen = mock.NewMockCommentGenerator()
	default:
		err = fmt.Errorf("unknown backend provider %q", cfg.Backend.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", cfg.Backend.Provider, err)
	}

	if cfg.Generation.CacheSize > 0 {
		return cache.NewCachingGenerator(gen, cfg.Generation.CacheSize)
	}
	return gen, nil
}

func newSourceFormatter(cfg *config.Config) outbound.SourceFormatter {
	if !cfg.Formatter.Enabled {
		return nil
	}
	return formatter.NewVimFormatter(formatter.Config{
		Command: cfg.Formatter.Command,
		TabStop: cfg.Formatter.TabStop,
		Timeout: cfg.Formatter.Timeout,
	})
}

func newJavaParser() (*treesitter.JavaParser, error) {
	return treesitter.NewJavaParser(treesitter.DefaultParserConfig())
}

func collectorConfig(cfg *config.Config) (domainservice.CollectorConfig, error) {
	kinds, err := cfg.Collector.DeclarationKinds()
	if err != nil {
		return domainservice.CollectorConfig{}, err
	}
	return domainservice.CollectorConfig{
		Kinds:  kinds,
		Policy: domainservice.TriviaPolicy{BlankLineThreshold: cfg.Collector.BlankLineThreshold},
	}, nil
}

func extractorConfig(cfg *config.Config) domainservice.ExtractorConfig {
	return domainservice.ExtractorConfig{
		BodyExcerptLimit:     cfg.Extractor.BodyExcerptLimit,
		MaxDeclarationTokens: cfg.Extractor.MaxDeclarationTokens,
	}
}

// documentationConfig maps the loaded configuration onto the pipeline settings.
func documentationConfig(cfg *config.Config) (service.DocumentationConfig, error) {
	collector, err := collectorConfig(cfg)
	if err != nil {
		return service.DocumentationConfig{}, err
	}

	metrics, err := service.NewGenerationMetrics()
	if err != nil {
		slogger.WarnNoCtx("Failed to initialize generation metrics, continuing without metrics", slogger.Fields{
			"error": err.Error(),
		})
	}

	return service.DocumentationConfig{
		Collector: collector,
		Extractor: extractorConfig(cfg),
		Orchestrator: service.OrchestratorConfig{
			Concurrency:    cfg.Generation.Concurrency,
			RequestTimeout: cfg.Generation.RequestTimeout,
			Metrics:        metrics,
		},
		Backend: cfg.Backend.Provider,
	}, nil
}
