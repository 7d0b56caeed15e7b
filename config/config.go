package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// PipelineConfig is the root structure for a pipeline definition (e.g. from
// YAML). Transactional pipelines additionally need an adapter at Build time.
type PipelineConfig struct {
	Name          string    `yaml:"name"`
	Transactional bool      `yaml:"transactional"`
	Steps         []StepRef `yaml:"steps"`
}

// StepRef is a single step entry: either a plain name or name + options.
// In YAML, a step can be written as:
//   - get-user
//   - name: insert-books
//     retry: 2
//     timeout: 5s
//     capture_errors: true
type StepRef struct {
	Name string `yaml:"name"`

	// Retry is the number of additional attempts after the first failure.
	Retry int `yaml:"retry"`

	// Timeout bounds each attempt (e.g. "5s").
	Timeout Duration `yaml:"timeout"`

	// CaptureErrors records the step outcome as a capture envelope instead
	// of failing the pipeline.
	CaptureErrors bool `yaml:"capture_errors"`
}

// UnmarshalYAML allows a step to be a string (step name only) or a struct.
func (s *StepRef) UnmarshalYAML(value *yaml.Node) error {
	var nameOnly string
	if err := value.Decode(&nameOnly); err == nil {
		s.Name = nameOnly
		return nil
	}
	type raw StepRef
	return value.Decode((*raw)(s))
}

// Duration is a time.Duration that unmarshals from YAML strings (e.g. "5s", "2m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the standard time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// ParsePipelineConfig parses YAML bytes into a single PipelineConfig.
func ParsePipelineConfig(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MultiPipelineConfig is the root structure for a file that defines multiple
// pipelines. Top-level key is "pipelines"; each value is a pipeline.
type MultiPipelineConfig struct {
	Pipelines map[string]PipelineConfig `yaml:"pipelines"`
}

// ParseMultiPipelineConfig parses YAML bytes that contain a "pipelines" map
// from name to pipeline config. Example YAML:
//
//	pipelines:
//	  enroll:
//	    transactional: true
//	    steps: [insert-user, insert-books]
//	  report:
//	    steps: [get-user, get-books]
func ParseMultiPipelineConfig(data []byte) (*MultiPipelineConfig, error) {
	var cfg MultiPipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
