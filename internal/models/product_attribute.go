package models

// ProductAttribute is a legacy free-text key/value row.
type ProductAttribute struct {
	ID        int64  `json:"id" db:"id"`
	ProductID int64  `json:"product_id" db:"product_id"`
	Key       string `json:"key" db:"key"`
	Value     string `json:"value" db:"value"`
}

// ProductAttributeValue is a flexible row for a global Attribute. Exactly one of
// AttributeValueID and CustomValue is set; PredefinedValue and AttributeKey are
// joined in on read.
type ProductAttributeValue struct {
	ID               int64   `json:"id" db:"id"`
	ProductID        int64   `json:"product_id" db:"product_id"`
	AttributeID      int64   `json:"attribute_id" db:"attribute_id"`
	AttributeKey     string  `json:"attribute_key" db:"attribute_key"`
	AttributeValueID *int64  `json:"attribute_value_id" db:"attribute_value_id"`
	PredefinedValue  *string `json:"predefined_value" db:"predefined_value"`
	CustomValue      *string `json:"custom_value" db:"custom_value"`
}

type AttributeValueRequest struct {
	Value string `json:"value" validate:"required,max=255"`
}
