package verify

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment carries the tunables for a verification run: how long to
// wait for signals that must arrive, how long to watch for signals that
// must not, and how hard the concurrency scenario pushes.
type Environment struct {
	// DefaultTimeout bounds the wait for any signal a scenario expects.
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// NoSignalTimeout is how long a scenario watches for signals that must
	// not arrive before declaring them absent.
	NoSignalTimeout time.Duration `yaml:"no_signal_timeout"`

	// SequenceLength is the element count driven through the publisher in
	// the ordered-sequence scenarios.
	SequenceLength int `yaml:"sequence_length"`

	// Requesters is how many goroutines issue demand concurrently in the
	// accounting scenario.
	Requesters int `yaml:"requesters"`

	// RequestsPerRequester is how many Request(1) calls each goroutine
	// makes in the accounting scenario.
	RequestsPerRequester int `yaml:"requests_per_requester"`
}

// DefaultEnvironment returns the settings used when nothing is configured.
func DefaultEnvironment() Environment {
	return Environment{
		DefaultTimeout:       time.Second,
		NoSignalTimeout:      50 * time.Millisecond,
		SequenceLength:       3,
		Requesters:           8,
		RequestsPerRequester: 50,
	}
}

// Validate checks that every setting is usable.
func (e Environment) Validate() error {
	if e.DefaultTimeout <= 0 {
		return fmt.Errorf("verify: default_timeout must be positive, got %s", e.DefaultTimeout)
	}
	if e.NoSignalTimeout <= 0 {
		return fmt.Errorf("verify: no_signal_timeout must be positive, got %s", e.NoSignalTimeout)
	}
	if e.SequenceLength < 1 {
		return fmt.Errorf("verify: sequence_length must be at least 1, got %d", e.SequenceLength)
	}
	if e.Requesters < 1 {
		return fmt.Errorf("verify: requesters must be at least 1, got %d", e.Requesters)
	}
	if e.RequestsPerRequester < 1 {
		return fmt.Errorf("verify: requests_per_requester must be at least 1, got %d", e.RequestsPerRequester)
	}
	return nil
}

// environmentYAML is the file form of Environment. Durations are strings
// in time.ParseDuration syntax; absent fields keep their defaults.
type environmentYAML struct {
	DefaultTimeout       string `yaml:"default_timeout"`
	NoSignalTimeout      string `yaml:"no_signal_timeout"`
	SequenceLength       *int   `yaml:"sequence_length"`
	Requesters           *int   `yaml:"requesters"`
	RequestsPerRequester *int   `yaml:"requests_per_requester"`
}

// LoadEnvironment reads a YAML environment file, fills unset fields with
// defaults and validates the result.
func LoadEnvironment(path string) (Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Environment{}, fmt.Errorf("verify: read environment: %w", err)
	}
	return ParseEnvironment(data)
}

// ParseEnvironment decodes YAML environment settings over the defaults and
// validates the result.
func ParseEnvironment(data []byte) (Environment, error) {
	var raw environmentYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Environment{}, fmt.Errorf("verify: parse environment: %w", err)
	}

	env := DefaultEnvironment()
	if raw.DefaultTimeout != "" {
		d, err := time.ParseDuration(raw.DefaultTimeout)
		if err != nil {
			return Environment{}, fmt.Errorf("verify: parse default_timeout: %w", err)
		}
		env.DefaultTimeout = d
	}
	if raw.NoSignalTimeout != "" {
		d, err := time.ParseDuration(raw.NoSignalTimeout)
		if err != nil {
			return Environment{}, fmt.Errorf("verify: parse no_signal_timeout: %w", err)
		}
		env.NoSignalTimeout = d
	}
	if raw.SequenceLength != nil {
		env.SequenceLength = *raw.SequenceLength
	}
	if raw.Requesters != nil {
		env.Requesters = *raw.Requesters
	}
	if raw.RequestsPerRequester != nil {
		env.RequestsPerRequester = *raw.RequestsPerRequester
	}

	if err := env.Validate(); err != nil {
		return Environment{}, err
	}
	return env, nil
}
