package catalog

import "shopcatalog/internal/models"

type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceLegacy
	SourcePredefined
	SourceCustom
)

func (k SourceKind) String() string {
	switch k {
	case SourceLegacy:
		return "legacy"
	case SourcePredefined:
		return "predefined"
	case SourceCustom:
		return "custom"
	default:
		return "none"
	}
}

// AttributeValueSource is a resolved attribute value together with the store it came from.
type AttributeValueSource struct {
	Kind    SourceKind
	ValueID int64 // set for SourcePredefined
	Value   string
}

func Legacy(value string) AttributeValueSource {
	return AttributeValueSource{Kind: SourceLegacy, Value: value}
}

func Predefined(valueID int64, value string) AttributeValueSource {
	return AttributeValueSource{Kind: SourcePredefined, ValueID: valueID, Value: value}
}

func Custom(value string) AttributeValueSource {
	return AttributeValueSource{Kind: SourceCustom, Value: value}
}

func (s AttributeValueSource) IsZero() bool {
	return s.Kind == SourceNone
}

// FlexibleSource reads a flexible row. consistent is false when the row has
// both or neither of the predefined and custom fields; the predefined value wins.
func FlexibleSource(row *models.ProductAttributeValue) (src AttributeValueSource, consistent bool) {
	if row == nil {
		return AttributeValueSource{}, true
	}
	if row.AttributeValueID != nil && row.PredefinedValue != nil {
		return Predefined(*row.AttributeValueID, *row.PredefinedValue), row.CustomValue == nil
	}
	if row.CustomValue != nil {
		return Custom(*row.CustomValue), row.AttributeValueID == nil
	}
	return AttributeValueSource{}, false
}

// Resolve picks the value of one key: the flexible store overrides the legacy store.
func Resolve(flexible *models.ProductAttributeValue, legacy *models.ProductAttribute) (AttributeValueSource, bool) {
	if src, _ := FlexibleSource(flexible); !src.IsZero() {
		return src, true
	}
	if legacy != nil {
		return Legacy(legacy.Value), true
	}
	return AttributeValueSource{}, false
}

// InconsistencyFunc is called for every flexible row that violates the
// predefined/custom exclusivity.
type InconsistencyFunc func(row *models.ProductAttributeValue)

// Merge resolves every key of one product across both stores. Duplicate legacy
// keys keep the first row in the given order.
func Merge(flexible []*models.ProductAttributeValue, legacy []*models.ProductAttribute, onInconsistent InconsistencyFunc) map[string]AttributeValueSource {
	out := make(map[string]AttributeValueSource, len(flexible)+len(legacy))
	for _, row := range legacy {
		if _, ok := out[row.Key]; ok {
			continue
		}
		out[row.Key] = Legacy(row.Value)
	}
	for _, row := range flexible {
		src, consistent := FlexibleSource(row)
		if !consistent && onInconsistent != nil {
			onInconsistent(row)
		}
		if src.IsZero() {
			continue
		}
		out[row.AttributeKey] = src
	}
	return out
}

var keyAliases = map[string]string{
	"برند": "brand",
}

// DisplayAttributes projects merged values for serialization. Aliased keys are
// renamed first and empty values skipped. When a renamed key collides with a
// direct one, a flexible value beats a legacy one and the direct key wins ties.
// When allowed is non-empty, only the final names in it are kept.
func DisplayAttributes(merged map[string]AttributeValueSource, allowed map[string]struct{}) map[string]string {
	out := make(map[string]string, len(merged))
	for key, src := range merged {
		if src.Value == "" {
			continue
		}
		name := key
		if alias, ok := keyAliases[key]; ok {
			name = alias
			if direct, ok := merged[alias]; ok && direct.Value != "" && !(direct.Kind == SourceLegacy && src.Kind != SourceLegacy) {
				continue
			}
		}
		if len(allowed) > 0 {
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		if _, taken := out[name]; taken && name == key {
			// an alias already claimed this name and outranks the direct key
			continue
		}
		out[name] = src.Value
	}
	return out
}
