package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"shopcatalog/internal/models"

	"github.com/shopspring/decimal"
)

const (
	ParamCategory     = "category"
	ParamCategoryID   = "category_id"
	ParamQ            = "q"
	ParamSearch       = "search"
	ParamIsActive     = "is_active"
	ParamIsNewArrival = "is_new_arrival"
	ParamPage         = "page"
	ParamPerPage      = "per_page"
)

var specialParams = map[string]struct{}{
	ParamCategory:     {},
	ParamCategoryID:   {},
	ParamQ:            {},
	ParamSearch:       {},
	ParamIsActive:     {},
	ParamIsNewArrival: {},
	ParamPage:         {},
	ParamPerPage:      {},
}

// IsSpecialParam reports whether key is reserved and never treated as an attribute.
func IsSpecialParam(key string) bool {
	_, ok := specialParams[key]
	return ok
}

type PriceField string

const (
	PriceToman PriceField = "price_toman"
	PriceUSD   PriceField = "price_usd"
)

type BoundOp string

const (
	OpGte BoundOp = "gte"
	OpLte BoundOp = "lte"
)

// PriceBound is an inclusive bound on one price field.
type PriceBound struct {
	Param string
	Field PriceField
	Op    BoundOp
	Value decimal.Decimal
}

// Match reports whether p satisfies the bound. A missing USD price never matches.
func (b PriceBound) Match(p *models.Product) bool {
	price := p.PriceToman
	if b.Field == PriceUSD {
		if !p.PriceUSD.Valid {
			return false
		}
		price = p.PriceUSD.Decimal
	}
	if b.Op == OpGte {
		return price.GreaterThanOrEqual(b.Value)
	}
	return price.LessThanOrEqual(b.Value)
}

func parsePriceParam(key string) (PriceField, BoundOp, bool) {
	field, op, found := strings.Cut(key, "__")
	if !found {
		return "", "", false
	}
	var pf PriceField
	switch field {
	case "price", string(PriceToman):
		pf = PriceToman
	case string(PriceUSD):
		pf = PriceUSD
	default:
		return "", "", false
	}
	switch BoundOp(op) {
	case OpGte, OpLte:
		return pf, BoundOp(op), true
	}
	return "", "", false
}

// ParseBool accepts true/1/yes and false/0/no, case-insensitively.
func ParseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// Scope holds the params that decide which products a request starts from.
type Scope struct {
	CategoryID *int64
	IsActive   bool
}

// ParseScope reads the category and is_active params. Unparseable values are ignored.
func ParseScope(values url.Values) Scope {
	scope := Scope{IsActive: true}
	for _, key := range []string{ParamCategory, ParamCategoryID} {
		if id, ok := parseID(values.Get(key)); ok {
			scope.CategoryID = &id
			break
		}
	}
	if active, ok := ParseBool(values.Get(ParamIsActive)); ok {
		scope.IsActive = active
	}
	return scope
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Query is a filter request split into attribute, price and special buckets.
type Query struct {
	Attributes   map[string][]string
	Prices       []PriceBound
	Search       string
	IsNewArrival *bool
	Special      map[string]string

	supplied bool
}

// ParseQuery partitions values. isAttributeKey decides the attribute key domain
// of the current scope. Blank values and malformed numbers are not recognized.
func ParseQuery(values url.Values, isAttributeKey func(string) bool) *Query {
	q := &Query{
		Attributes: make(map[string][]string),
		Special:    make(map[string]string),
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		if len(vals) > 0 {
			q.supplied = true
		}
		raw := lastNonBlank(vals)
		switch {
		case IsSpecialParam(key):
			q.parseSpecial(key, raw)
		case isPrice(key):
			field, op, _ := parsePriceParam(key)
			if raw == "" {
				continue
			}
			value, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			q.Prices = append(q.Prices, PriceBound{Param: key, Field: field, Op: op, Value: value})
		case isAttributeKey != nil && isAttributeKey(key):
			if requested := distinctNonBlank(vals); len(requested) > 0 {
				q.Attributes[key] = requested
			}
		}
	}
	return q
}

func isPrice(key string) bool {
	_, _, ok := parsePriceParam(key)
	return ok
}

func (q *Query) parseSpecial(key, raw string) {
	if raw == "" {
		return
	}
	switch key {
	case ParamCategory, ParamCategoryID:
		if _, ok := parseID(raw); !ok {
			return
		}
	case ParamIsActive:
		if _, ok := ParseBool(raw); !ok {
			return
		}
	case ParamIsNewArrival:
		v, ok := ParseBool(raw)
		if !ok {
			return
		}
		q.IsNewArrival = &v
	case ParamQ:
		q.Search = raw
	case ParamSearch:
		if q.Search == "" {
			q.Search = raw
		}
	}
	q.Special[key] = raw
}

// Supplied reports whether the request carried any params at all.
func (q *Query) Supplied() bool {
	return q.supplied
}

// Recognized reports whether at least one param landed in a bucket.
func (q *Query) Recognized() bool {
	return len(q.Attributes) > 0 || len(q.Prices) > 0 || len(q.Special) > 0
}

// Rejected is true when params were supplied but none was recognized; such a
// request matches nothing rather than everything.
func (q *Query) Rejected() bool {
	return q.Supplied() && !q.Recognized()
}

// AttributeKeys returns the requested attribute keys in sorted order.
func (q *Query) AttributeKeys() []string {
	keys := make([]string, 0, len(q.Attributes))
	for key := range q.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FiltersApplied echoes the recognized filters back to the client.
type FiltersApplied struct {
	Attributes map[string][]string `json:"attributes"`
	Price      map[string]string   `json:"price"`
	Special    map[string]string   `json:"special"`
}

func (q *Query) Applied() FiltersApplied {
	applied := FiltersApplied{
		Attributes: q.Attributes,
		Price:      make(map[string]string, len(q.Prices)),
		Special:    q.Special,
	}
	for _, b := range q.Prices {
		applied.Price[b.Param] = b.Value.String()
	}
	return applied
}

// MatchesSearch is a case-insensitive substring match over name, description, sku and model.
func MatchesSearch(p *models.Product, term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Description, p.SKU, p.Model} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func lastNonBlank(vals []string) string {
	for i := len(vals) - 1; i >= 0; i-- {
		if strings.TrimSpace(vals[i]) != "" {
			return vals[i]
		}
	}
	return ""
}

func distinctNonBlank(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
