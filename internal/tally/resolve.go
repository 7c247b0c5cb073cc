package tally

import "strings"

// choiceTypes are the field types whose values are option identifiers that
// need resolving to display text.
var choiceTypes = map[string]bool{
	"MULTIPLE_CHOICE": true,
	"CHECKBOXES":      true,
	"DROPDOWN":        true,
	"RANKING":         true,
}

// resolveFieldValue converts a field's raw value into a single display
// string. Choice-type values are mapped through the field's options by id;
// an entry with no matching option is kept verbatim rather than dropped.
// Multiple entries are joined with ", ". Returns ok=false when the field has
// no usable value.
func resolveFieldValue(field Field) (string, bool) {
	if !field.Value.HasValue() {
		return "", false
	}

	if choiceTypes[field.Type] && len(field.Options) > 0 {
		values := field.Value.AsList()
		resolved := make([]string, 0, len(values))
		for _, v := range values {
			text := v
			for _, opt := range field.Options {
				if opt.ID == v && opt.Text != "" {
					text = opt.Text
					break
				}
			}
			if text != "" {
				resolved = append(resolved, text)
			}
		}
		if len(resolved) == 0 {
			return "", false
		}
		return strings.Join(resolved, ", "), true
	}

	joined := strings.TrimSpace(strings.Join(field.Value.AsList(), ", "))
	if joined == "" {
		return "", false
	}
	return joined, true
}

// Strategy resolves a canonical column name against a submission's fields.
// Strategies are evaluated in the order they were configured; the first one
// that produces a value wins.
type Strategy interface {
	Resolve(fields []Field, column string) (string, bool)
}

// KeyMapEntry binds one form field key to a canonical column name. The entry
// list is ordered: earlier entries win when several map to the same column.
type KeyMapEntry struct {
	Key    string
	Column string
}

// ByKey resolves columns through an explicit field-key map. The map is
// maintained by hand per form and may be empty or stale; a miss simply defers
// to the next strategy.
type ByKey struct {
	entries []KeyMapEntry
}

// NewByKey creates a key-map strategy from ordered entries.
func NewByKey(entries ...KeyMapEntry) ByKey {
	return ByKey{entries: entries}
}

// Resolve finds the first mapped key for the column that exists in the
// submission with a usable value.
func (s ByKey) Resolve(fields []Field, column string) (string, bool) {
	for _, entry := range s.entries {
		if entry.Column != column {
			continue
		}
		for _, f := range fields {
			if f.Key == entry.Key {
				if value, ok := resolveFieldValue(f); ok {
					return value, true
				}
				break
			}
		}
	}
	return "", false
}

// ByLabelKeyword resolves columns by scanning field labels and keys for
// configured keywords, case-insensitive substring match. Keywords are tried
// in configured order; within a keyword, the first matching field wins.
type ByLabelKeyword struct {
	keywords map[string][]string
}

// NewByLabelKeyword creates a label-keyword fallback strategy.
func NewByLabelKeyword(keywords map[string][]string) ByLabelKeyword {
	return ByLabelKeyword{keywords: keywords}
}

// Resolve implements Strategy.
func (s ByLabelKeyword) Resolve(fields []Field, column string) (string, bool) {
	for _, keyword := range s.keywords[column] {
		needle := strings.ToLower(keyword)
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f.Label), needle) ||
				strings.Contains(strings.ToLower(f.Key), needle) {
				if value, ok := resolveFieldValue(f); ok {
					return value, true
				}
				break
			}
		}
	}
	return "", false
}

// FieldResolver extracts canonical column values from a submission's fields
// by evaluating an ordered list of resolution strategies. The strategy list
// is per-form configuration, injected at construction.
type FieldResolver struct {
	strategies []Strategy
}

// NewFieldResolver creates a resolver from the given strategies.
func NewFieldResolver(strategies ...Strategy) *FieldResolver {
	return &FieldResolver{strategies: strategies}
}

// Resolve returns the value for the column, or ok=false when no strategy
// produced one. Missing fields are never an error.
func (r *FieldResolver) Resolve(fields []Field, column string) (string, bool) {
	for _, s := range r.strategies {
		if value, ok := s.Resolve(fields, column); ok {
			return value, true
		}
	}
	return "", false
}

// ExtractUTM pulls marketing attribution parameters out of the fields by
// case-insensitive substring match of the parameter name against label or
// key. Single-tier: the explicit key map never applies to UTM fields.
func ExtractUTM(fields []Field, params []string) map[string]*string {
	result := make(map[string]*string, len(params))
	for _, param := range params {
		result[param] = nil
		needle := strings.ToLower(param)
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f.Label), needle) ||
				strings.Contains(strings.ToLower(f.Key), needle) {
				if value, ok := resolveFieldValue(f); ok {
					v := value
					result[param] = &v
				}
				break
			}
		}
	}
	return result
}
