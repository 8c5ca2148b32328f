package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/contextsource"
	"github.com/dshills/poaudit/internal/metrics"
	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/policy"
	"github.com/dshills/poaudit/internal/schema"
	"github.com/dshills/poaudit/internal/schema/validate"
)

// Tool is the report producer name.
const Tool = "poaudit"

var (
	// ErrInvalidInput wraps order or context validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrContextSource wraps failures of the configured context provider.
	ErrContextSource = errors.New("context source unavailable")
)

// Service validates inputs, resolves the policy context and runs the engine.
// It is shared by the CLI and the HTTP adapter.
type Service struct {
	engine   *audit.Engine
	provider contextsource.Provider
	metrics  *metrics.Metrics
	logger   *zap.Logger
	version  string
	newID    func() string
	validate bool
	preset   *policy.Preset
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records audit outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version stamped on reports.
func WithVersion(v string) Option {
	return func(s *Service) { s.version = v }
}

// WithIDGenerator replaces the random report id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithPolicy fills the unset thresholds of caller-supplied contexts from
// preset, the way contextsource.Policy does for provider contexts.
func WithPolicy(preset *policy.Preset) Option {
	return func(s *Service) { s.preset = preset }
}

// WithoutValidation skips input validation. Non-finite numbers then yield
// a report with an empty fingerprint.
func WithoutValidation() Option {
	return func(s *Service) { s.validate = false }
}

// New constructs a Service. A nil provider serves an empty context.
func New(engine *audit.Engine, provider contextsource.Provider, opts ...Option) *Service {
	if engine == nil {
		engine = audit.New()
	}
	if provider == nil {
		provider = contextsource.Static{}
	}
	s := &Service{
		engine:   engine,
		provider: provider,
		logger:   zap.NewNop(),
		newID:    func() string { return uuid.NewString() },
		validate: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Audit runs one audit. When override is non-nil it is used as the context
// instead of the provider, completed by the policy preset if one is set.
func (s *Service) Audit(ctx context.Context, o *order.PurchaseOrder, override *audit.Context) (*schema.Report, error) {
	if s.validate {
		if err := validate.Order(o); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	c := override
	if c != nil && s.preset != nil {
		c = s.preset.Apply(c)
	}
	if c == nil {
		loaded, err := s.provider.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrContextSource, err)
		}
		c = loaded
	}
	if s.validate {
		if err := validate.Context(c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	start := time.Now()
	report := s.engine.Run(o, c)
	elapsed := time.Since(start)

	report.ReportID = s.newID()
	report.Tool = Tool
	report.Version = s.version

	s.metrics.ObserveReport(report, elapsed)
	s.logger.Debug("order audited",
		zap.String("report_id", report.ReportID),
		zap.String("order_id", report.OrderID),
		zap.String("risk", string(report.Risk)),
		zap.String("recommendation", string(report.Recommendation)),
		zap.Int("anomalies", len(report.Anomalies)),
		zap.String("input_fingerprint", report.InputFingerprint),
	)
	return report, nil
}
