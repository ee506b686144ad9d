package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	EnginePath         string
	KnowledgeBasePaths []string
	Logger             *zap.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Engine   Engine
	Reasoner *reasoner.Engine
	// Bases maps base names to knowledge bases; Names keeps file order.
	Bases map[string]*kb.KnowledgeBase
	Names []string
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Engine: DefaultEngine(), Bases: make(map[string]*kb.KnowledgeBase)}

	if l.EnginePath != "" {
		cfg, err := LoadEngine(l.EnginePath)
		if err != nil {
			return nil, fmt.Errorf("load engine config: %w", err)
		}
		comp.Engine = cfg
	}
	opts, err := comp.Engine.Options(l.Logger)
	if err != nil {
		return nil, err
	}
	comp.Reasoner = reasoner.New(opts)

	for _, path := range l.KnowledgeBasePaths {
		f, err := LoadKnowledgeBaseFile(path)
		if err != nil {
			return nil, fmt.Errorf("load knowledge base: %w", err)
		}
		if _, dup := comp.Bases[f.Name]; dup {
			return nil, fmt.Errorf("%w: knowledge base %q loaded twice", internalerr.ErrDuplicate, f.Name)
		}
		base, err := f.Build()
		if err != nil {
			return nil, fmt.Errorf("build knowledge base %s: %w", f.Name, err)
		}
		comp.Bases[f.Name] = base
		comp.Names = append(comp.Names, f.Name)
	}
	return comp, nil
}
