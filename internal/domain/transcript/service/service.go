// Package service wires decoding, layout detection, interpretation and the
// strike search into one pipeline.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/transcript-strike/internal/domain/strike"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/parser"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/sniffer"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/weights"
	"github.com/FACorreiaa/transcript-strike/pkg/config"
)

const tracerName = "github.com/FACorreiaa/transcript-strike/internal/domain/transcript/service"

// Config configures a Service.
type Config struct {
	ThesisCredits float64
	Weights       *weights.Table
	// StrictLayout fails extraction when the sniffer does not recognize the
	// tables as a transcript.
	StrictLayout bool
	// FuzzyDistance bounds the edit distance for weight table suggestions.
	// Zero disables suggestions.
	FuzzyDistance int
	Strike        strike.Options
	Timeout       time.Duration
}

// DefaultConfig returns the built-in weights, 15 thesis credits and the
// default strike options.
func DefaultConfig() Config {
	return Config{
		ThesisCredits: parser.DefaultThesisCredits,
		Weights:       weights.Default(),
		FuzzyDistance: 3,
		Strike:        strike.DefaultOptions(),
	}
}

// ConfigFrom maps application configuration onto a service configuration.
func ConfigFrom(cfg *config.Config, table *weights.Table) Config {
	if table == nil {
		table = weights.Default()
	}
	return Config{
		ThesisCredits: cfg.Transcript.ThesisCredits,
		Weights:       table,
		StrictLayout:  cfg.Transcript.StrictLayout,
		FuzzyDistance: cfg.Transcript.WeightFuzzyDistance,
		Strike: strike.Options{
			CreditCap:       cfg.Strike.CreditCap,
			MaxCombinations: cfg.Strike.MaxCombinations,
			Epsilon:         cfg.Strike.TieEpsilon,
		},
		Timeout: cfg.Strike.Timeout,
	}
}

// Extraction is the outcome of reading a transcript.
type Extraction struct {
	RunID    uuid.UUID
	Layout   *sniffer.Layout
	Result   *parser.Result
	Warnings []weights.Suggestion
}

// Courses returns the extracted records.
func (e *Extraction) Courses() []transcript.Course {
	if e == nil || e.Result == nil {
		return nil
	}
	return e.Result.Courses
}

// Run is the outcome of a full report.
type Run struct {
	ID         uuid.UUID
	Extraction *Extraction // nil when the run started from records
	Result     *strike.Result
	Report     *strike.Report
}

// Service runs the transcript pipeline.
type Service struct {
	cfg         Config
	interpreter *parser.Interpreter
	optimizer   *strike.Optimizer
	metrics     *Metrics
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a service. metrics may be nil.
func NewService(cfg Config, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Weights == nil {
		cfg.Weights = weights.Default()
	}

	return &Service{
		cfg: cfg,
		interpreter: parser.NewInterpreter(parser.Config{
			ThesisCredits: cfg.ThesisCredits,
			Weights:       cfg.Weights,
		}, parser.WithLogger(logger.With("component", "interpreter"))),
		optimizer: strike.NewOptimizer(cfg.Strike, logger.With("component", "optimizer")),
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Decode reads tables from r. An empty format is detected from filename and
// content.
func (s *Service) Decode(ctx context.Context, r io.Reader, filename string, format parser.Format) ([]transcript.Table, error) {
	_, span := s.tracer.Start(ctx, "transcript.Decode", trace.WithAttributes(
		attribute.String("filename", filename),
		attribute.String("format", string(format)),
	))
	defer span.End()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to read input: %w", err))
	}
	if format == parser.FormatAuto {
		format = parser.DetectFormat(filename, data)
		span.SetAttributes(attribute.String("detected_format", string(format)))
	}

	tables, err := parser.DecodeTables(bytes.NewReader(data), filename, format)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("tables", len(tables)))
	return tables, nil
}

// Sniff decodes the input and reports its layout without interpreting it.
func (s *Service) Sniff(ctx context.Context, r io.Reader, filename string, format parser.Format) (*sniffer.Layout, error) {
	tables, err := s.Decode(ctx, r, filename, format)
	if err != nil {
		return nil, err
	}
	return sniffer.Detect(tables), nil
}

// Extract decodes, checks and interprets a transcript.
func (s *Service) Extract(ctx context.Context, r io.Reader, filename string, format parser.Format) (*Extraction, error) {
	runID := uuid.New()
	logger := s.logger.With("run_id", runID)

	tables, err := s.Decode(ctx, r, filename, format)
	if err != nil {
		return nil, err
	}
	return s.extractTables(ctx, runID, logger, tables)
}

// ExtractTables checks and interprets already decoded tables.
func (s *Service) ExtractTables(ctx context.Context, tables []transcript.Table) (*Extraction, error) {
	runID := uuid.New()
	return s.extractTables(ctx, runID, s.logger.With("run_id", runID), tables)
}

func (s *Service) extractTables(ctx context.Context, runID uuid.UUID, logger *slog.Logger, tables []transcript.Table) (*Extraction, error) {
	ctx, span := s.tracer.Start(ctx, "transcript.Extract", trace.WithAttributes(
		attribute.String("run_id", runID.String()),
	))
	defer span.End()

	layout, err := sniffer.Require(tables)
	logger.DebugContext(ctx, "layout detected",
		"rows", layout.TotalRows,
		"header_found", layout.HeaderFound,
		"confidence", layout.Confidence)

	if err != nil {
		if s.cfg.StrictLayout {
			return nil, fail(span, err)
		}
		logger.WarnContext(ctx, "input does not look like a transcript", "confidence", layout.Confidence)
	}

	result, err := s.interpreter.Interpret(tables)
	if err != nil {
		logger.ErrorContext(ctx, "transcript interpretation failed", "error", err)
		return nil, fail(span, fmt.Errorf("failed to interpret transcript: %w", err))
	}
	s.metrics.observeExtraction(result)

	extraction := &Extraction{
		RunID:    runID,
		Layout:   layout,
		Result:   result,
		Warnings: s.suggestWeights(ctx, logger, result.Courses),
	}

	for _, d := range result.Degraded {
		logger.WarnContext(ctx, "unreadable cell replaced by fallback",
			"row", d.Index, "column", d.Column, "value", d.Value)
	}

	span.SetAttributes(
		attribute.Int("rows", result.TotalRows),
		attribute.Int("courses", len(result.Courses)),
		attribute.Int("skipped", result.SkippedRows()),
	)
	logger.InfoContext(ctx, "transcript extracted",
		"rows", result.TotalRows,
		"courses", len(result.Courses),
		"sections", result.SectionsOpened,
		"skipped", result.SkippedRows(),
		"degraded", len(result.Degraded))

	return extraction, nil
}

// suggestWeights flags labels that are not in the weight table but close to
// one of its keys.
func (s *Service) suggestWeights(ctx context.Context, logger *slog.Logger, courses []transcript.Course) []weights.Suggestion {
	if s.cfg.FuzzyDistance <= 0 {
		return nil
	}

	var out []weights.Suggestion
	seen := make(map[string]bool)
	for _, c := range courses {
		if seen[c.Label] {
			continue
		}
		seen[c.Label] = true
		if sug, ok := s.cfg.Weights.Suggest(c.Label, s.cfg.FuzzyDistance); ok {
			logger.WarnContext(ctx, "course label resembles a weight table entry",
				"label", sug.Label, "entry", sug.Key, "distance", sug.Distance)
			out = append(out, sug)
		}
	}
	return out
}

// Optimize runs the strike search over the records.
func (s *Service) Optimize(ctx context.Context, courses []transcript.Course) (*strike.Result, error) {
	ctx, span := s.tracer.Start(ctx, "strike.Optimize", trace.WithAttributes(
		attribute.Int("courses", len(courses)),
	))
	defer span.End()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	result, err := s.optimizer.Optimize(ctx, courses)
	s.metrics.observeSearch(result, err)
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(
		attribute.Int("categories", result.Categories),
		attribute.Int64("evaluated", int64(result.Evaluated)),
		attribute.Int64("rejected", int64(result.Rejected)),
		attribute.Int("winners", len(result.Winners)),
	)
	return result, nil
}

// Report extracts a transcript and searches its best strike set.
func (s *Service) Report(ctx context.Context, r io.Reader, filename string, format parser.Format) (*Run, error) {
	extraction, err := s.Extract(ctx, r, filename, format)
	if err != nil {
		return nil, err
	}

	run, err := s.ReportCourses(ctx, extraction.Courses())
	if err != nil {
		return nil, err
	}
	run.ID = extraction.RunID
	run.Report.ID = extraction.RunID
	run.Extraction = extraction
	return run, nil
}

// ReportCourses searches the best strike set of previously extracted records.
func (s *Service) ReportCourses(ctx context.Context, courses []transcript.Course) (*Run, error) {
	result, err := s.Optimize(ctx, courses)
	if err != nil {
		return nil, fmt.Errorf("strike search failed: %w", err)
	}

	report := strike.NewReport(result)
	return &Run{
		ID:     report.ID,
		Result: result,
		Report: report,
	}, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
