// Package config loads engine settings and rule bases from YAML files.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
)

// Engine represents the engine configuration
type Engine struct {
	Semantics string `yaml:"semantics"`
	Valuation string `yaml:"valuation"`
	// RestrictedRebutting defaults to true when absent.
	RestrictedRebutting *bool  `yaml:"restricted_rebutting"`
	MaxDepth            int    `yaml:"max_depth"`
	MaxArguments        int    `yaml:"max_arguments"`
	Party               string `yaml:"party"`
}

// DefaultEngine returns the configuration matching reasoner.DefaultOptions.
func DefaultEngine() Engine {
	restricted := true
	return Engine{
		Semantics:           string(reasoner.Grounded),
		Valuation:           argument.WeakestLinkName,
		RestrictedRebutting: &restricted,
		MaxDepth:            argument.DefaultMaxDepth,
		MaxArguments:        reasoner.DefaultMaxArguments,
		Party:               "engine",
	}
}

// LoadEngine loads engine settings from a YAML file. Missing keys keep
// their defaults.
func LoadEngine(path string) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, err
	}
	return ParseEngine(data)
}

// ParseEngine decodes and validates engine settings.
func ParseEngine(data []byte) (Engine, error) {
	cfg := DefaultEngine()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Engine{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if cfg.RestrictedRebutting == nil {
		cfg.RestrictedRebutting = DefaultEngine().RestrictedRebutting
	}
	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

// Validate checks names and bounds.
func (c Engine) Validate() error {
	if _, err := reasoner.ParseSemantics(c.Semantics); err != nil {
		return err
	}
	if _, err := argument.ValuatorByName(c.Valuation); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must not be negative, got %d", internalerr.ErrInvalidConfig, c.MaxDepth)
	}
	if c.MaxArguments < 0 {
		return fmt.Errorf("%w: max_arguments must not be negative, got %d", internalerr.ErrInvalidConfig, c.MaxArguments)
	}
	return nil
}

// Options converts the configuration into engine options.
func (c Engine) Options(logger *zap.Logger) (reasoner.Options, error) {
	if err := c.Validate(); err != nil {
		return reasoner.Options{}, err
	}
	sem, _ := reasoner.ParseSemantics(c.Semantics)
	val, _ := argument.ValuatorByName(c.Valuation)
	restricted := true
	if c.RestrictedRebutting != nil {
		restricted = *c.RestrictedRebutting
	}
	return reasoner.Options{
		Semantics:           sem,
		Valuator:            val,
		RestrictedRebutting: restricted,
		MaxDepth:            c.MaxDepth,
		MaxArguments:        c.MaxArguments,
		Party:               c.Party,
		Logger:              logger,
	}, nil
}
