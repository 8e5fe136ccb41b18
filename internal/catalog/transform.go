// =============================================================================
// Catalog Builder - Transformation Engine
// =============================================================================
//
// Applies the configured transformation rules to flattened model records
// right before they are exported. Rules are keyed by export schema field
// ("Prodotto", "Sottotitolo", "Nome Articolo"...), so the same config works
// for every mode.
//
// COMMON USES:
//   - Filling "Prodotto" with a fixed product family
//   - Deriving "Sottotitolo" from the category path
//   - Normalizing case of titles
//   - Mapping legacy unit codes through a lookup table
//
// =============================================================================

package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/glasscom/catalog-builder/internal/config"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies transformation rules to records.
type Transformer struct {
	rules    []config.TransformationRule
	patterns map[string]*regexp.Regexp
}

// NewTransformer validates the rules and compiles their patterns.
//
// RETURNS:
//   - The transformer.
//   - An error for an unknown action type or an invalid regex.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{rules: rules, patterns: make(map[string]*regexp.Regexp)}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if !knownAction(action.Type) {
				return nil, fmt.Errorf("field %s: unknown transformation type: %s", rule.Field, action.Type)
			}
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			if _, ok := t.patterns[action.Find]; ok {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid regex pattern: %w", rule.Field, err)
			}
			t.patterns[action.Find] = re
		}
	}

	return t, nil
}

func knownAction(kind string) bool {
	switch kind {
	case "set", "prepend_string", "append_string", "uppercase", "lowercase",
		"trim", "replace", "regex_replace", "lookup", "subcategory":
		return true
	}
	return false
}

// Apply transforms one record in place. Rules for fields the record does not
// have are skipped, so fixed-schema rules never add keys to dynamic records.
func (t *Transformer) Apply(record types.Record) {
	for _, rule := range t.rules {
		value, exists := record[rule.Field]
		if !exists {
			continue
		}
		for _, action := range rule.Actions {
			value = t.applyAction(value, action, record)
		}
		record[rule.Field] = value
	}
}

// ApplyAll transforms every record in place.
func (t *Transformer) ApplyAll(records []types.Record) {
	if len(t.rules) == 0 {
		return
	}
	for _, record := range records {
		t.Apply(record)
	}
}

// applyAction applies a single transformation action.
//
// PARAMETERS:
//   - value: The current value.
//   - action: The transformation action to apply.
//   - record: The whole record, for actions that read other fields.
func (t *Transformer) applyAction(value string, action config.TransformationAction, record types.Record) string {
	if action.OnlyIfEmpty && strings.TrimSpace(value) != "" {
		return value
	}

	switch action.Type {
	case "set":
		return action.Value

	case "prepend_string":
		// "Pomolo" with prepend "Glasscom " becomes "Glasscom Pomolo"
		return action.Value + value

	case "append_string":
		return value + action.Value

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "trim":
		return strings.TrimSpace(value)

	case "replace":
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		re, ok := t.patterns[action.Find]
		if !ok {
			return value
		}
		return re.ReplaceAllString(value, action.Value)

	case "lookup":
		// "PZ" with lookup {"PZ": "Pezzo"} becomes "Pezzo"
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement
		}
		return value

	case "subcategory":
		_, sub := model.ExtractCategory(record[model.KeyCategory], "")
		if sub == "" {
			return value
		}
		return sub
	}

	return value
}
