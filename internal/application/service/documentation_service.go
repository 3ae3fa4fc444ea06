package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"javadocgen/internal/application/common/logging"
	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/application/dto"
	"javadocgen/internal/domain/errors/domain"
	domainservice "javadocgen/internal/domain/service"
	"javadocgen/internal/domain/valueobject"
	"javadocgen/internal/port/outbound"
)

// DocumentationDeps are the collaborators of a DocumentationService.
type DocumentationDeps struct {
	Parser    outbound.SyntaxParser
	Generator outbound.CommentGenerator
	// Formatter is optional; nil leaves the patched text as it is.
	Formatter outbound.SourceFormatter
	PromptBuilder outbound.PromptBuilder
}

// DocumentationConfig holds the run-scoped settings of a DocumentationService.
type DocumentationConfig struct {
	Collector    domainservice.CollectorConfig
	Extractor    domainservice.ExtractorConfig
	Orchestrator OrchestratorConfig
	// Backend names the generation backend in reports.
	Backend string
}

// DefaultDocumentationConfig returns the default pipeline settings.
func DefaultDocumentationConfig() DocumentationConfig {
	return DocumentationConfig{
		Collector: domainservice.DefaultCollectorConfig(),
		Extractor: domainservice.DefaultExtractorConfig(),
		Orchestrator: OrchestratorConfig{
			Concurrency:    DefaultConcurrency,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

// DocumentationService runs the whole pipeline for one file: parse, collect
// candidates, extract contexts, generate comments, patch and format.
// It holds no per-run state, so Process may run concurrently for different files.
type DocumentationService struct {
	parser       outbound.SyntaxParser
	formatter    outbound.SourceFormatter
	buildPrompt  outbound.PromptBuilder
	collector    *domainservice.CandidateCollector
	extractor    *domainservice.ContextExtractor
	orchestrator *GenerationOrchestrator
	backend      string
}

// NewDocumentationService creates a DocumentationService.
func NewDocumentationService(deps DocumentationDeps, cfg DocumentationConfig) (*DocumentationService, error) {
	if deps.Parser == nil {
		return nil, fmt.Errorf("%w: parser is required", domain.ErrInvalidConfig)
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("%w: comment generator is required", domain.ErrInvalidConfig)
	}
	if deps.PromptBuilder == nil {
		return nil, fmt.Errorf("%w: prompt builder is required", domain.ErrInvalidConfig)
	}

	return &DocumentationService{
		parser:       deps.Parser,
		formatter:    deps.Formatter,
		buildPrompt:  deps.PromptBuilder,
		collector:    domainservice.NewCandidateCollector(cfg.Collector),
		extractor:    domainservice.NewContextExtractor(cfg.Extractor),
		orchestrator: NewGenerationOrchestrator(deps.Generator, cfg.Orchestrator),
		backend:      cfg.Backend,
	}, nil
}

// Process documents every undocumented declaration of file. Only a parse
// failure or an internal patch conflict returns an error; every other problem
// leaves the affected declaration as it was and is recorded in the report.
// The returned output always contains the original text as a subsequence.
func (s *DocumentationService) Process(ctx context.Context, file *valueobject.SourceFile) (*dto.RunResult, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: source file is nil", domain.ErrInvalidInput)
	}

	start := time.Now()
	report := dto.NewRunReport(file.Path())
	report.Backend = s.backend
	report.CorrelationID = logging.CorrelationIDFromContext(ctx)

	tree, err := s.parser.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	report.SyntaxErrors = tree.Metadata().ErrorCount

	candidates, stats := s.collector.Collect(ctx, tree)
	report.Declarations = stats.Declarations
	report.AlreadyDocumented = len(stats.Documented)
	report.CandidatesFound = len(candidates)

	jobs := s.buildJobs(ctx, tree, candidates, report)
	results := s.orchestrator.Run(ctx, jobs)

	patches := s.collectPatches(candidates, results, report)

	patched, err := domainservice.ApplyPatches(file.Content(), patches)
	if err != nil {
		return nil, fmt.Errorf("applying %d patches to %s: %w", len(patches), file.Path(), err)
	}

	output := s.format(ctx, patched, len(patches) > 0, report)

	report.SortEntries()
	report.Duration = time.Since(start)

	slogger.Info(ctx, "Documentation run finished", slogger.Fields{
		"path":       file.Path(),
		"candidates": report.CandidatesFound,
		"documented": len(report.Documented),
		"skipped":    len(report.Skipped),
		"warnings":   len(report.Warnings),
		"duration":   report.Duration.String(),
	})

	return &dto.RunResult{
		Original: file.Content(),
		Patched:  patched,
		Output:   output,
		Report:   report,
	}, nil
}

func (s *DocumentationService) buildJobs(
	ctx context.Context,
	tree *valueobject.ParseTree,
	candidates []valueobject.Candidate,
	report *dto.RunReport,
) []GenerationJob {
	jobs := make([]GenerationJob, 0, len(candidates))
	for _, c := range candidates {
		declCtx, err := s.extractor.Extract(tree, c)
		if err != nil {
			reason := valueobject.SkipExtractionFailed
			if errors.Is(err, domain.ErrDeclarationTooLarge) {
				reason = valueobject.SkipTooLarge
			}
			slogger.Warn(ctx, "Declaration skipped before generation", slogger.Fields{
				"candidate": c.String(),
				"reason":    string(reason),
				"error":     err.Error(),
			})
			report.AddSkipped(skippedFromCandidate(c, reason, err))
			continue
		}
		jobs = append(jobs, GenerationJob{
			Candidate: c,
			Context:   declCtx,
			Prompt:    s.buildPrompt(declCtx),
		})
	}
	return jobs
}

func (s *DocumentationService) collectPatches(
	candidates []valueobject.Candidate,
	results []valueobject.GeneratedComment,
	report *dto.RunReport,
) []valueobject.Patch {
	patches := make([]valueobject.Patch, 0, len(results))
	for _, r := range results {
		c := candidates[r.CandidateID]
		if !r.Succeeded() {
			report.AddSkipped(skippedFromCandidate(c, r.Reason, r.Err))
			continue
		}

		patch, err := domainservice.BuildPatch(c, r.Text)
		if err != nil {
			report.AddSkipped(skippedFromCandidate(c, valueobject.SkipGenerationFailed, err))
			continue
		}
		patches = append(patches, patch)
		report.AddDocumented(c, r.Duration)
	}
	return patches
}

func (s *DocumentationService) format(ctx context.Context, patched []byte, changed bool, report *dto.RunReport) []byte {
	if s.formatter == nil {
		return patched
	}
	report.Formatter = s.formatter.Name()
	if !changed {
		return patched
	}

	formatted, err := s.formatter.Format(ctx, patched)
	if err != nil {
		report.AddWarning("formatting skipped: %v", err)
		slogger.Warn(ctx, "Formatting skipped, keeping unformatted output", slogger.Fields{
			"formatter": s.formatter.Name(),
			"error":     err.Error(),
		})
		return patched
	}
	report.Formatted = true
	return formatted
}

func skippedFromCandidate(c valueobject.Candidate, reason valueobject.SkipReason, err error) valueobject.SkippedDeclaration {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return valueobject.SkippedDeclaration{
		Kind:          c.Kind,
		Name:          c.Name,
		EnclosingName: c.EnclosingName,
		Line:          c.Line(),
		Reason:        reason,
		Detail:        detail,
	}
}
