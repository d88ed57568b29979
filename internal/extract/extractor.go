package extract

import (
	"log/slog"
	"strings"

	"github.com/onec-tools/invoice-recon/internal/entity"
)

// Extractor applies an ordered rule table to raw document text. Extraction
// is total: every field resolves to a value or absent, never an error.
type Extractor struct {
	rules  []Rule
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	return NewExtractorWithRules(DefaultRules, logger)
}

func NewExtractorWithRules(rules []Rule, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{rules: rules, logger: logger}
}

// Extract searches the full text with each rule independently. Rules are not
// anchored to a page or line; captured values are trimmed of surrounding
// whitespace but keep embedded spaces (thousands grouping like "1 234,56").
func (e *Extractor) Extract(text string) entity.FieldSet {
	var fields entity.FieldSet
	for _, rule := range e.rules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fields.Set(rule.Field, entity.Some(strings.TrimSpace(m[1])))
	}
	return fields
}
