package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/tidrun/internal/ctxlog"
	"github.com/specialistvlad/tidrun/internal/registry"
	"github.com/specialistvlad/tidrun/internal/sink"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	DefaultTitle          = "tidrun"
	DefaultTool           = "tidrun"
	DefaultBuildDate      = "unknown"
	DefaultSeparator      = '-'
	DefaultSeparatorWidth = 60

	lineNoTests  = "No tests registered"
	lineAllDone  = "ALL TESTS DONE"
	msgGoexit    = "unit exited through runtime.Goexit"
	instrumentID = "github.com/specialistvlad/tidrun/internal/runner"
)

// Source is the read-only view of a registry the runner needs.
type Source interface {
	Size() int
	Entries() []registry.Entry
}

// Runner executes the entries of a Source.
type Runner struct {
	src       Source
	title     string
	tool      string
	buildDate string
	args      []string
	separator string
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() uuid.UUID
}

// Option configures a Runner.
type Option func(*Runner)

// WithTitle sets the framework title shown in the suite banner.
func WithTitle(title string) Option {
	return func(r *Runner) { r.title = title }
}

// WithTool sets the tool name shown in the suite banner.
func WithTool(tool string) Option {
	return func(r *Runner) { r.tool = tool }
}

// WithBuildDate sets the build stamp shown in the suite banner.
func WithBuildDate(date string) Option {
	return func(r *Runner) { r.buildDate = date }
}

// WithArgs sets process arguments to display in the suite banner.
func WithArgs(args []string) Option {
	return func(r *Runner) { r.args = args }
}

// WithSeparator sets the separator character and line width.
func WithSeparator(ch rune, width int) Option {
	return func(r *Runner) {
		if width <= 0 {
			width = DefaultSeparatorWidth
		}
		r.separator = strings.Repeat(string(ch), width)
	}
}

// WithTracer records a span for the suite and one per unit.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithRunID fixes the run id instead of generating one per Execute, so the
// caller can hand the same id to its sinks.
func WithRunID(id uuid.UUID) Option {
	return func(r *Runner) { r.newID = func() uuid.UUID { return id } }
}

// WithClock replaces time.Now, for deterministic durations in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New returns a Runner over src.
func New(src Source, opts ...Option) *Runner {
	r := &Runner{
		src:       src,
		title:     DefaultTitle,
		tool:      DefaultTool,
		buildDate: DefaultBuildDate,
		separator: strings.Repeat(string(DefaultSeparator), DefaultSeparatorWidth),
		tracer:    noop.NewTracerProvider().Tracer(instrumentID),
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs every registered unit in order and streams the transcript
// to out. It always returns a report; unit failures are recorded in it and
// never propagate.
func (r *Runner) Execute(ctx context.Context, out sink.Sink) (report *Report) {
	report = &Report{RunID: r.newID(), Started: r.now()}
	logger := ctxlog.FromContext(ctx).With("run_id", report.RunID.String())

	defer func() {
		if v := recover(); v != nil {
			logger.Error("Runner bookkeeping panicked, returning partial report.", "panic", fmt.Sprint(v), "results", len(report.Results))
		}
		report.Finished = r.now()
	}()

	entries := r.src.Entries()
	if len(entries) == 0 {
		logger.Info("No tests registered, nothing to execute.")
		out.Line(sink.Info, lineNoTests)
		return report
	}

	ctx, suiteSpan := r.tracer.Start(ctx, "suite",
		trace.WithAttributes(
			attribute.String("tidrun.run_id", report.RunID.String()),
			attribute.Int("tidrun.tests", len(entries)),
		))
	defer suiteSpan.End()

	logger.Info("🚀 Starting test run.", "tests", len(entries))
	r.suiteStart(out, len(entries))

	report.Results = make([]RunResult, 0, len(entries))
	for _, e := range entries {
		out.Line(sink.Separator, r.separator)
		out.Line(sink.Banner, "BEGIN ["+e.Description+"]")

		res := r.runTraced(ctx, e)
		report.Results = append(report.Results, res)

		kind := sink.Pass
		if res.Outcome.Failed() {
			kind = sink.Fail
			logger.Warn("Test unit failed.", "tid", e.Seq, "description", e.Description, "outcome", res.Outcome.String(), "message", res.Message)
		} else {
			logger.Debug("Test unit passed.", "tid", e.Seq, "description", e.Description, "duration", res.Duration)
		}
		out.Line(kind, res.Line())
		out.Line(sink.Banner, "END ["+e.Description+"]")
		out.Line(sink.Separator, r.separator)
	}

	out.Line(sink.Separator, r.separator)
	out.Line(sink.Banner, lineAllDone)
	out.Line(sink.Info, report.Summary())
	out.Line(sink.Separator, r.separator)

	suiteSpan.SetAttributes(
		attribute.Int("tidrun.passed", report.Passed()),
		attribute.Int("tidrun.failed", report.Failed()),
	)
	if !report.OK() {
		suiteSpan.SetStatus(codes.Error, report.Summary())
	}
	logger.Info("🏁 Test run finished.", "passed", report.Passed(), "failed", report.Failed())
	return report
}

func (r *Runner) suiteStart(out sink.Sink, count int) {
	noun := "tests"
	if count == 1 {
		noun = "test"
	}
	out.Line(sink.Separator, r.separator)
	out.Line(sink.Banner, fmt.Sprintf("%s | %s | built %s | %d %s registered", r.title, r.tool, r.buildDate, count, noun))
	if len(r.args) > 0 {
		out.Line(sink.Info, "args: "+strings.Join(r.args, " "))
	}
	out.Line(sink.Separator, r.separator)
}

func (r *Runner) runTraced(ctx context.Context, e registry.Entry) RunResult {
	_, span := r.tracer.Start(ctx, e.Description,
		trace.WithAttributes(
			attribute.Int("tidrun.tid", e.Seq),
			attribute.String("tidrun.name", e.Name),
		))
	defer span.End()

	res := r.runUnit(e)

	span.SetAttributes(attribute.String("tidrun.outcome", res.Outcome.String()))
	if res.HasCode {
		span.SetAttributes(attribute.Int("tidrun.code", res.Code))
	}
	if res.Outcome.Failed() {
		if res.Err != nil {
			span.RecordError(res.Err)
		}
		span.SetStatus(codes.Error, res.Line())
	}
	return res
}

// runUnit invokes one unit inside its failure boundary. The unit moves
// from Running to exactly one terminal outcome. It runs on its own
// goroutine so that runtime.Goexit ends only the unit; Execute waits for it
// before moving on, so execution stays sequential.
func (r *Runner) runUnit(e registry.Entry) RunResult {
	done := make(chan RunResult, 1)
	go func() {
		res := RunResult{Entry: e, Outcome: Running}
		start := r.now()
		returned := false
		defer func() {
			v := recover()
			switch {
			case v != nil:
				classifySafely(&res, func() { classifyPanic(v, &res) })
			case !returned:
				res.Outcome = FailedUnknown
				res.Message = msgGoexit
			}
			res.Duration = r.now().Sub(start)
			done <- res
		}()

		err := e.Func()
		returned = true
		classifySafely(&res, func() { classifyError(err, &res) })
	}()
	return <-done
}
