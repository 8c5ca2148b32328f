package audit

import (
	"time"

	"github.com/dshills/poaudit/internal/fingerprint"
	"github.com/dshills/poaudit/internal/nomenclature"
	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/review"
	"github.com/dshills/poaudit/internal/schema"
)

// Engine runs the audit pipeline. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	catalog *nomenclature.Catalog
	clock   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog sets the nomenclature catalog used for compatibility checks.
func WithCatalog(c *nomenclature.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithClock sets the clock used for GeneratedAt.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// New constructs an Engine. Without options it uses the built-in catalog and
// the wall clock.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalog: nomenclature.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEngine = New()

// Run audits o against c with the built-in catalog.
func Run(o *order.PurchaseOrder, c *Context) *schema.Report {
	return defaultEngine.Run(o, c)
}

// Catalog returns the catalog the engine checks against.
func (e *Engine) Catalog() *nomenclature.Catalog {
	return e.catalog
}

// Run audits a purchase order against a policy context. It performs no I/O,
// does not modify its inputs and never fails: problems are reported as
// anomalies. A nil context is an empty one.
//
// InputFingerprint is empty only when the inputs cannot be encoded, which
// happens with non-finite numbers; callers validate inputs beforehand.
func (e *Engine) Run(o *order.PurchaseOrder, c *Context) *schema.Report {
	if o == nil {
		o = &order.PurchaseOrder{}
	}
	if c == nil {
		c = &Context{}
	}

	in := &input{
		order:   o,
		ctx:     c,
		catalog: e.catalog,
		totals:  o.ComputeTotals(c.vatRate()),
	}

	report := &schema.Report{
		OrderID:   o.ID,
		Anomalies: []schema.Anomaly{},
		Checks:    make([]schema.Check, 0, len(pipeline)),
		Totals:    in.totals,
	}
	for _, check := range pipeline {
		result, anomaly := check(in)
		report.Checks = append(report.Checks, result)
		if anomaly != nil {
			report.Anomalies = append(report.Anomalies, *anomaly)
		}
	}

	report.Risk = review.Risk(report.Anomalies)
	report.Recommendation = review.Recommend(report.Anomalies)
	report.Summary = summarize(o.ID, report.Recommendation, len(report.Anomalies), in.totals)
	report.InputFingerprint = Fingerprint(o, c)
	report.GeneratedAt = e.clock().UTC()
	return report
}

// Fingerprint digests the exact (order, context) pair of a run. Key order at
// any depth and blacklist order do not affect the result.
func Fingerprint(o *order.PurchaseOrder, c *Context) string {
	if c == nil {
		c = &Context{}
	}
	fp, err := fingerprint.Of(struct {
		Order   *order.PurchaseOrder `json:"order"`
		Context Context              `json:"context"`
	}{o, c.canonical()})
	if err != nil {
		return ""
	}
	return fp
}
