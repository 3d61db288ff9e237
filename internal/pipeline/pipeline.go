// Package pipeline orchestrates one conversion: input text goes to the
// oracle, the response is recovered into JSON, validated as an architecture
// graph, and rendered into a Mermaid diagram and a MATLAB build script.
// Rejected attempts retry with the failure reason appended to the prompt.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/extract"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/graphstore"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/history"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/metrics"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/observability"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/prompt"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/render/matlab"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/render/mermaid"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/schema"
	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/vector"
)

// State names the pipeline's observable phases.
type State string

const (
	StateBuildingPrompt State = "BUILDING_PROMPT"
	StateAwaitingOracle State = "AWAITING_ORACLE"
	StateExtracting     State = "EXTRACTING"
	StateValidating     State = "VALIDATING"
	StateRendering      State = "RENDERING"
	StateDone           State = "DONE"
	StateFailed         State = "FAILED"
)

// DefaultMaxAttempts bounds the oracle retry loop.
const DefaultMaxAttempts = 3

// DefaultTemperature is the oracle sampling temperature when the session
// leaves it unset.
const DefaultTemperature = 0.3

// fewShotLimit caps how many similar stored graphs enrich the prompt.
const fewShotLimit = 2

// Session carries a pipeline's dependencies. Only LLM is required; every
// other field degrades gracefully to a no-op when nil.
type Session struct {
	LLM     llm.Provider
	Graph   graphstore.Repository
	Vector  *vector.Indexer
	History *history.Store
	Log     *zap.Logger

	MaxAttempts int
	Temperature float64
}

// Input is one conversion request.
type Input struct {
	Kind prompt.InputKind
	Text string
}

// RunResult is the full output of a conversion run.
type RunResult struct {
	RunID       string
	State       State
	Attempts    int
	Graph       *schema.ArchitectureGraph
	GraphJSON   []byte
	Diagram     string
	Script      string
	Diagnostics []schema.Diagnostic
}

func (s *Session) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}

func (s *Session) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (s *Session) temperature() float64 {
	if s.Temperature > 0 {
		return s.Temperature
	}
	return DefaultTemperature
}

// Run executes the full conversion. It fails only when the oracle loop is
// exhausted or a hard transport error occurs; rendering problems surface as
// diagnostics on a successful result.
func (s *Session) Run(ctx context.Context, in Input) (*RunResult, error) {
	if s.LLM == nil {
		return nil, fmt.Errorf("no oracle provider configured")
	}

	result := &RunResult{
		RunID: uuid.NewString(),
		State: StateBuildingPrompt,
	}
	log := s.logger().With(zap.String("run_id", result.RunID))
	run := metrics.NewRun()

	ctx, span := observability.Tracer().Start(ctx, "pipeline.run")
	defer span.End()

	examples := s.similarExamples(ctx, in.Text, log)

	graph, diags, err := s.oracleLoop(ctx, in, examples, result, run, log)
	if err != nil {
		result.State = StateFailed
		s.record(ctx, result, run, "", err)
		return result, err
	}
	result.Graph = graph
	result.Diagnostics = append(result.Diagnostics, diags...)

	result.State = StateRendering
	renderStart := time.Now()

	encoded, err := schema.Encode(graph)
	if err != nil {
		// Encode of a decoded graph cannot realistically fail; degrade to a
		// diagnostic rather than losing the run.
		result.Diagnostics = append(result.Diagnostics, schema.Diagnostic{
			Stage: "encode", Message: err.Error(),
		})
	}
	result.GraphJSON = encoded

	diagram, dDiags := mermaid.Render(graph)
	result.Diagram = diagram
	result.Diagnostics = append(result.Diagnostics, dDiags...)

	script, sDiags := matlab.Render(graph)
	result.Script = script
	result.Diagnostics = append(result.Diagnostics, sDiags...)

	run.ObserveStage("render", time.Since(renderStart))
	result.State = StateDone

	s.persist(ctx, result, log)
	s.record(ctx, result, run, graph.SystemName, nil)

	log.Info("conversion complete",
		zap.Int("attempts", result.Attempts),
		zap.Int("components", len(graph.Components)),
		zap.Int("connections", len(graph.Connections)),
		zap.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}

// RunFromGraph re-renders a previously exported graph JSON without calling
// the oracle. Import converges on the same validation path as generation.
func (s *Session) RunFromGraph(ctx context.Context, data []byte) (*RunResult, error) {
	result := &RunResult{
		RunID: uuid.NewString(),
		State: StateValidating,
	}

	graph, diags, err := schema.Load(data)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.Graph = graph
	result.Diagnostics = append(result.Diagnostics, diags...)

	result.State = StateRendering
	encoded, err := schema.Encode(graph)
	if err == nil {
		result.GraphJSON = encoded
	}

	diagram, dDiags := mermaid.Render(graph)
	result.Diagram = diagram
	result.Diagnostics = append(result.Diagnostics, dDiags...)

	script, sDiags := matlab.Render(graph)
	result.Script = script
	result.Diagnostics = append(result.Diagnostics, sDiags...)

	result.State = StateDone
	return result, nil
}

// oracleLoop runs up to MaxAttempts oracle round trips. Each rejection's
// reason is fed into the next attempt's prompt.
func (s *Session) oracleLoop(ctx context.Context, in Input, examples []string, result *RunResult, run *metrics.RunMetrics, log *zap.Logger) (*schema.ArchitectureGraph, []schema.Diagnostic, error) {
	var attempts []*AttemptError
	feedback := ""

	for attempt := 1; attempt <= s.maxAttempts(); attempt++ {
		result.Attempts = attempt

		result.State = StateBuildingPrompt
		text := prompt.BuildWithContext(in.Kind, in.Text, feedback, examples)

		result.State = StateAwaitingOracle
		oracleCtx, span := observability.StartStage(ctx, "oracle", attempt)
		start := time.Now()
		resp, err := s.LLM.Complete(oracleCtx, llm.UserPrompt(text), llm.Temp(s.temperature()))
		run.ObserveStage("oracle", time.Since(start))
		if err != nil {
			observability.RecordError(span, err)
			span.End()
			attemptErr := &AttemptError{
				Kind:    FailureOracle,
				Attempt: attempt,
				Reason:  err.Error(),
				Err:     err,
			}
			attempts = append(attempts, attemptErr)
			if ctx.Err() != nil {
				return nil, nil, &ExhaustedError{Attempts: attempts}
			}
			log.Warn("oracle call failed", zap.Int("attempt", attempt), zap.Error(err))
			feedback = "the previous request failed before producing output; answer with the JSON object only"
			continue
		}
		span.End()
		run.AddTokens(resp.InputTokens, resp.OutputTokens)

		result.State = StateExtracting
		extracted, err := extract.Extract(resp.Content)
		if err != nil {
			attemptErr := &AttemptError{
				Kind:    FailureExtraction,
				Attempt: attempt,
				Reason:  "response contained no parseable JSON",
				Err:     err,
			}
			attempts = append(attempts, attemptErr)
			log.Warn("extraction failed", zap.Int("attempt", attempt), zap.Error(err))
			feedback = attemptErr.Reason
			continue
		}

		result.State = StateValidating
		ok, reason := schema.Validate(extracted.Value)
		if !ok {
			attemptErr := &AttemptError{
				Kind:    FailureValidation,
				Attempt: attempt,
				Reason:  reason,
			}
			attempts = append(attempts, attemptErr)
			log.Warn("validation failed", zap.Int("attempt", attempt), zap.String("reason", reason))
			feedback = reason
			continue
		}

		graph, diags := schema.Decode(extracted.Value)
		log.Debug("graph accepted",
			zap.Int("attempt", attempt),
			zap.String("strategy", extracted.Strategy),
			zap.String("system", graph.SystemName))
		return graph, diags, nil
	}

	return nil, nil, &ExhaustedError{Attempts: attempts}
}

// similarExamples fetches stored graphs similar to the input for few-shot
// enrichment. Failures are logged and ignored.
func (s *Session) similarExamples(ctx context.Context, input string, log *zap.Logger) []string {
	if s.Vector == nil {
		return nil
	}
	examples, err := s.Vector.SearchSimilar(ctx, input, fewShotLimit)
	if err != nil {
		log.Warn("similarity search unavailable", zap.Error(err))
		return nil
	}
	return examples
}

// persist stores the accepted graph in the graph store and the similarity
// index. Both are best-effort.
func (s *Session) persist(ctx context.Context, result *RunResult, log *zap.Logger) {
	if s.Graph != nil {
		err := s.Graph.StoreRun(ctx, &graphstore.StoredRun{
			RunID:      result.RunID,
			SystemName: result.Graph.SystemName,
			CreatedAt:  time.Now().UTC(),
			Graph:      result.Graph,
		})
		if err != nil {
			log.Warn("graph store unavailable", zap.Error(err))
		}
	}
	if s.Vector != nil {
		if err := s.Vector.IndexGraph(ctx, result.RunID, result.Graph); err != nil {
			log.Warn("similarity index unavailable", zap.Error(err))
		}
	}
}

// record finalizes metrics and appends the run to local history.
func (s *Session) record(ctx context.Context, result *RunResult, run *metrics.RunMetrics, systemName string, runErr error) {
	components, connections := 0, 0
	if result.Graph != nil {
		components = len(result.Graph.Components)
		connections = len(result.Graph.Connections)
	}
	run.Finish(string(result.State), result.Attempts, components, connections, len(result.Diagnostics))

	if s.History == nil {
		return
	}
	entry := history.Run{
		ID:         result.RunID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Status:     string(result.State),
		Attempts:   result.Attempts,
		SystemName: systemName,
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	if err := s.History.Append(ctx, entry); err != nil {
		s.logger().Warn("history unavailable", zap.Error(err))
	}
}
