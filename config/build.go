package config

import (
	"fmt"

	"github.com/dcshock/dbchain/chain"
	"github.com/dcshock/dbchain/policy"
)

// Build constructs a bound chain.Pipeline from cfg: steps are looked up in
// reg by name and appended with the per-step policy options from their
// StepRef. Transactional configs require a non-nil adapter; sequential
// configs carry the adapter along when one is given (it is simply unused).
func Build[H any](reg *Registry[H], cfg *PipelineConfig, handle H, adapter chain.Adapter[H]) (*chain.Pipeline[H], error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	var p *chain.Pipeline[H]
	switch {
	case cfg.Transactional:
		if adapter == nil {
			return nil, fmt.Errorf("pipeline %q: transactional config requires an adapter", cfg.Name)
		}
		p = chain.Transaction(handle, adapter)
	case adapter != nil:
		p = chain.Use(handle, adapter)
	default:
		p = chain.Use(handle)
	}
	for i, ref := range cfg.Steps {
		if ref.Name == "" {
			return nil, fmt.Errorf("step %d: name required", i)
		}
		e, ok := reg.lookup(ref.Name)
		if !ok {
			return nil, fmt.Errorf("step %d: %q not in registry", i, ref.Name)
		}
		opts := ref.options()
		if e.direct != nil {
			p = p.Chain(e.direct, opts)
		} else {
			p = p.ChainResults(e.fromResults, opts)
		}
	}
	return p, nil
}

// options maps a StepRef to policy options; a ref with no options set maps
// to nil (run once, no timeout).
func (s StepRef) options() *policy.Options {
	if s.Retry == 0 && s.Timeout == 0 && !s.CaptureErrors {
		return nil
	}
	return &policy.Options{
		RetryCount:    s.Retry,
		Timeout:       s.Timeout.Duration(),
		CaptureErrors: s.CaptureErrors,
	}
}

// BuildAll builds a pipeline for each entry in multi, all bound to the same
// handle and adapter. Keys are pipeline names; if a config's Name is empty,
// the map key is used.
func BuildAll[H any](reg *Registry[H], multi *MultiPipelineConfig, handle H, adapter chain.Adapter[H]) (map[string]*chain.Pipeline[H], error) {
	if multi == nil {
		return nil, fmt.Errorf("MultiPipelineConfig is nil")
	}
	out := make(map[string]*chain.Pipeline[H], len(multi.Pipelines))
	for name, cfg := range multi.Pipelines {
		if cfg.Name == "" {
			cfg.Name = name
		}
		p, err := Build(reg, &cfg, handle, adapter)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}
