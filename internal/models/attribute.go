package models

import "time"

type AttributeType string

const (
	AttributeTypeText        AttributeType = "text"
	AttributeTypeNumber      AttributeType = "number"
	AttributeTypeSelect      AttributeType = "select"
	AttributeTypeMultiselect AttributeType = "multiselect"
	AttributeTypeBoolean     AttributeType = "boolean"
	AttributeTypeColor       AttributeType = "color"
	AttributeTypeSize        AttributeType = "size"
)

// Attribute is a globally registered, reusable attribute.
type Attribute struct {
	ID           int64         `json:"id" db:"id"`
	Key          string        `json:"key" db:"key"`
	Name         string        `json:"name" db:"name"`
	Type         AttributeType `json:"type" db:"type"`
	IsFilterable bool          `json:"is_filterable" db:"is_filterable"`
	DisplayOrder int           `json:"display_order" db:"display_order"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// AttributeValue is a predefined choice of an Attribute.
type AttributeValue struct {
	ID           int64   `json:"id" db:"id"`
	AttributeID  int64   `json:"attribute_id" db:"attribute_id"`
	Value        string  `json:"value" db:"value"`
	DisplayOrder int     `json:"display_order" db:"display_order"`
	ColorCode    *string `json:"color_code" db:"color_code"`
}

type AttributeInput struct {
	Key          string `json:"key" validate:"required,max=50"`
	Name         string `json:"name" validate:"required,max=100"`
	Type         string `json:"type" validate:"required,oneof=text number select multiselect boolean color size"`
	IsFilterable *bool  `json:"is_filterable"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
}

type AttributeValueInput struct {
	Value        string  `json:"value" validate:"required,max=100"`
	DisplayOrder int     `json:"display_order" validate:"gte=0"`
	ColorCode    *string `json:"color_code" validate:"omitempty,hexcolor"`
}

// CategoryAttribute is a typed field of a category's product-entry form.
type CategoryAttribute struct {
	ID           int64                     `json:"id" db:"id"`
	CategoryID   int64                     `json:"category_id" db:"category_id"`
	Key          string                    `json:"key" db:"key"`
	Type         AttributeType             `json:"type" db:"type"`
	Required     bool                      `json:"required" db:"required"`
	DisplayOrder int                       `json:"display_order" db:"display_order"`
	LabelFa      string                    `json:"label_fa" db:"label_fa"`
	Values       []*CategoryAttributeValue `json:"values,omitempty" db:"-"`
}

type CategoryAttributeValue struct {
	ID                  int64  `json:"id" db:"id"`
	CategoryAttributeID int64  `json:"category_attribute_id" db:"category_attribute_id"`
	Value               string `json:"value" db:"value"`
	DisplayOrder        int    `json:"display_order" db:"display_order"`
}

type CategoryAttributeInput struct {
	Key          string   `json:"key" validate:"required,max=50"`
	Type         string   `json:"type" validate:"required,oneof=text number select multiselect boolean"`
	Required     bool     `json:"required"`
	DisplayOrder int      `json:"display_order" validate:"gte=0"`
	LabelFa      string   `json:"label_fa" validate:"max=100"`
	Values       []string `json:"values" validate:"dive,required,max=100"`
}

// FacetValue is one selectable value of a filter key.
type FacetValue struct {
	ID           int64   `json:"id"`
	Value        string  `json:"value"`
	DisplayOrder int     `json:"display_order"`
	ColorCode    *string `json:"color_code"`
}
