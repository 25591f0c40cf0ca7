package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64               `json:"id" db:"id"`
	Name          string              `json:"name" db:"name"`
	CategoryID    int64               `json:"category_id" db:"category_id"`
	PriceToman    decimal.Decimal     `json:"price_toman" db:"price_toman"`
	PriceUSD      decimal.NullDecimal `json:"price_usd" db:"price_usd"`
	Description   string              `json:"description" db:"description"`
	Model         string              `json:"model" db:"model"`
	SKU           string              `json:"sku" db:"sku"`
	StockQuantity int                 `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool                `json:"is_active" db:"is_active"`
	IsNewArrival  bool                `json:"is_new_arrival" db:"is_new_arrival"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

type ProductInput struct {
	Name          string           `json:"name" validate:"required,max=200"`
	CategoryID    int64            `json:"category_id" validate:"required,gt=0"`
	PriceToman    decimal.Decimal  `json:"price_toman"`
	PriceUSD      *decimal.Decimal `json:"price_usd"`
	Description   string           `json:"description"`
	Model         string           `json:"model" validate:"max=100"`
	SKU           string           `json:"sku" validate:"max=100"`
	StockQuantity int              `json:"stock_quantity" validate:"gte=0"`
	IsActive      *bool            `json:"is_active"`
	IsNewArrival  bool             `json:"is_new_arrival"`
}

// Apply copies the input onto p. IsActive defaults to true on new products.
func (in *ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.CategoryID = in.CategoryID
	p.PriceToman = in.PriceToman
	p.PriceUSD = decimal.NullDecimal{}
	if in.PriceUSD != nil {
		p.PriceUSD = decimal.NewNullDecimal(*in.PriceUSD)
	}
	p.Description = in.Description
	p.Model = in.Model
	p.SKU = in.SKU
	p.StockQuantity = in.StockQuantity
	p.IsNewArrival = in.IsNewArrival
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	} else if p.ID == 0 {
		p.IsActive = true
	}
}

// ProductScope selects the candidate products of a filter request.
type ProductScope struct {
	CategoryIDs []int64 // nil means every category
	IsActive    bool
}

// AttributeCleanup reports how many attribute rows were pruned from each store.
type AttributeCleanup struct {
	Legacy   int64 `json:"legacy"`
	Flexible int64 `json:"flexible"`
}

// ProductView is the serialized product returned by read endpoints.
type ProductView struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	PriceToman    decimal.Decimal     `json:"price_toman"`
	PriceUSD      decimal.NullDecimal `json:"price_usd"`
	Description   string              `json:"description"`
	Model         string              `json:"model"`
	SKU           string              `json:"sku"`
	StockQuantity int                 `json:"stock_quantity"`
	IsActive      bool                `json:"is_active"`
	IsNewArrival  bool                `json:"is_new_arrival"`
	CategoryID    int64               `json:"category_id"`
	Category      string              `json:"category"`
	Attributes    map[string]string   `json:"attributes"`
	Images        []string            `json:"images"`
	CreatedAt     time.Time           `json:"created_at"`
}
