package kb

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// RuleWriter persists a rendered knowledge base to a destination (file, DB, etc.).
type RuleWriter interface {
	WriteRules(ctx context.Context, content string) error
}

// StreamWriter adapts an io.Writer to RuleWriter.
type StreamWriter struct {
	W io.Writer
}

func (s StreamWriter) WriteRules(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(s.W, content)
	return err
}

// Exporter renders knowledge bases in prolog-like notation, one rule per line.
type Exporter struct {
	Writer  RuleWriter
	Options InspectOptions
	// Comments adds the caption of each rule as a trailing % comment.
	Comments bool
}

func (e *Exporter) Export(ctx context.Context, base *KnowledgeBase) error {
	if e.Writer == nil {
		return fmt.Errorf("rule exporter: nil writer")
	}
	var b strings.Builder
	for _, r := range base.Rules() {
		line := r.InspectWith(e.Options)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString(".")
		if e.Comments && r.Caption != "" {
			b.WriteString(" % ")
			b.WriteString(r.Caption)
		}
		b.WriteString("\n")
	}
	return e.Writer.WriteRules(ctx, b.String())
}
