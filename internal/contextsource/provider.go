// Package contextsource loads the policy context an audit runs against:
// thresholds, supplier blacklist, site budgets and price history.
package contextsource

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/metrics"
	"github.com/dshills/poaudit/internal/policy"
)

// Provider returns a policy context snapshot.
type Provider interface {
	Load(ctx context.Context) (*audit.Context, error)
}

// Static serves a fixed context.
type Static struct {
	Context *audit.Context
}

func (s Static) Load(context.Context) (*audit.Context, error) {
	if s.Context == nil {
		return &audit.Context{}, nil
	}
	return s.Context, nil
}

// File reads a context from a YAML or JSON document on each Load.
type File struct {
	Path    string
	Metrics *metrics.Metrics
}

func (f File) Load(context.Context) (*audit.Context, error) {
	start := time.Now()
	defer func() { f.Metrics.ObserveContextLatency("file", time.Since(start)) }()

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a context document. JSON is accepted as a subset of YAML.
func Parse(data []byte) (*audit.Context, error) {
	var c audit.Context
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing context: %w", err)
	}
	return &c, nil
}

// Policy fills the thresholds left unset by Next from a preset.
type Policy struct {
	Next   Provider
	Preset *policy.Preset
}

func (p Policy) Load(ctx context.Context) (*audit.Context, error) {
	c, err := p.Next.Load(ctx)
	if err != nil {
		return nil, err
	}
	if p.Preset == nil {
		return c, nil
	}
	return p.Preset.Apply(c), nil
}
