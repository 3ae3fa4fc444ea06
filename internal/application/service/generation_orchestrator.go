package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"javadocgen/internal/application/common/slogger"
	domainservice "javadocgen/internal/domain/service"
	"javadocgen/internal/domain/valueobject"
	"javadocgen/internal/port/outbound"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency    = 4
	DefaultRequestTimeout = 120 * time.Second
)

// OrchestratorConfig bounds the generation requests of one run.
type OrchestratorConfig struct {
	// Concurrency is the maximum number of requests in flight.
	Concurrency int
	// RequestTimeout bounds each request independently.
	RequestTimeout time.Duration
	Metrics        *GenerationMetrics
}

// GenerationJob is one candidate ready to be sent to the backend.
type GenerationJob struct {
	Candidate valueobject.Candidate
	Context   valueobject.DeclarationContext
	Prompt    string
}

// GenerationOrchestrator issues one generation request per job with bounded concurrency.
type GenerationOrchestrator struct {
	generator outbound.CommentGenerator
	config    OrchestratorConfig
}

// NewGenerationOrchestrator creates an orchestrator. Non-positive limits fall back to the defaults.
func NewGenerationOrchestrator(generator outbound.CommentGenerator, cfg OrchestratorConfig) *GenerationOrchestrator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &GenerationOrchestrator{generator: generator, config: cfg}
}

// Run generates a comment for every job and returns one result per job, in job
// order. A failed request only marks its own result. Once ctx is done no new
// request is dispatched and the remaining jobs are marked cancelled; requests
// already in flight are not interrupted and finish or time out on their own.
// Run returns after every dispatched request has finished.
func (o *GenerationOrchestrator) Run(ctx context.Context, jobs []GenerationJob) []valueobject.GeneratedComment {
	results := make([]valueobject.GeneratedComment, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(min(o.config.Concurrency, len(jobs)))

	for i := range jobs {
		if ctx.Err() != nil {
			results[i] = cancelledResult(jobs[i], ctx.Err())
			continue
		}
		g.Go(func() error {
			// The slot may have been granted after cancellation.
			if err := ctx.Err(); err != nil {
				results[i] = cancelledResult(jobs[i], err)
				return nil
			}
			results[i] = o.generate(ctx, jobs[i])
			return nil
		})
	}

	_ = g.Wait()

	o.logSummary(ctx, results)
	return results
}

func (o *GenerationOrchestrator) generate(ctx context.Context, job GenerationJob) valueobject.GeneratedComment {
	result := valueobject.GeneratedComment{
		CandidateID:     job.Candidate.ID,
		CandidateOffset: job.Candidate.InsertOffset(),
	}

	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.RequestTimeout)
	defer cancel()

	request := outbound.GenerationRequest{
		CandidateID: job.Candidate.ID,
		Context:     job.Context,
		Prompt:      job.Prompt,
		RequestID:   uuid.NewString(),
	}

	start := time.Now()
	raw, err := o.generator.GenerateComment(reqCtx, request)
	if err == nil {
		var text string
		text, err = domainservice.WrapCommentBlock(raw)
		if err != nil {
			err = &outbound.GenerationError{
				Code:      outbound.CodeEmptyResponse,
				Message:   "response contains no comment text",
				Type:      outbound.ErrorTypeResponse,
				RequestID: request.RequestID,
				Cause:     err,
			}
		}
		result.Text = text
	}
	result.Duration = time.Since(start)

	outcome := outcomeSuccess
	if err != nil {
		result.Text = ""
		result.Err = err
		result.Reason = ClassifyGenerationError(err)
		outcome = string(result.Reason)

		slogger.Warn(ctx, "Comment generation failed, declaration left undocumented", slogger.Fields{
			"candidate":  job.Candidate.String(),
			"line":       job.Candidate.Line(),
			"reason":     string(result.Reason),
			"request_id": request.RequestID,
			"error":      err.Error(),
		})
	} else {
		slogger.Debug(ctx, "Comment generated", slogger.Fields{
			"candidate":   job.Candidate.String(),
			"request_id":  request.RequestID,
			"duration_ms": result.Duration.Milliseconds(),
		})
	}

	o.config.Metrics.RecordRequest(ctx, job.Candidate.Kind.String(), outcome, result.Duration)
	return result
}

func cancelledResult(job GenerationJob, cause error) valueobject.GeneratedComment {
	return valueobject.GeneratedComment{
		CandidateID:     job.Candidate.ID,
		CandidateOffset: job.Candidate.InsertOffset(),
		Err:             fmt.Errorf("generation not started: %w", cause),
		Reason:          valueobject.SkipCancelled,
	}
}

// ClassifyGenerationError maps a generation failure to the skip reason reported for it.
func ClassifyGenerationError(err error) valueobject.SkipReason {
	var genErr *outbound.GenerationError
	if errors.As(err, &genErr) {
		switch genErr.Code {
		case outbound.CodeTimeout:
			return valueobject.SkipTimeout
		case outbound.CodeBackendCancelled:
			return valueobject.SkipCancelled
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return valueobject.SkipTimeout
	case errors.Is(err, context.Canceled):
		return valueobject.SkipCancelled
	default:
		return valueobject.SkipGenerationFailed
	}
}

func (o *GenerationOrchestrator) logSummary(ctx context.Context, results []valueobject.GeneratedComment) {
	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	slogger.Info(ctx, "Generation finished", slogger.Fields{
		"requested":   len(results),
		"succeeded":   succeeded,
		"failed":      len(results) - succeeded,
		"concurrency": o.config.Concurrency,
	})
}
