package catalog

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryTreeCorrupt = errors.New("category tree corrupt: parent chain contains a cycle")
	ErrCategoryCycle       = errors.New("category parent would create a cycle")
	ErrUnknownAttribute    = errors.New("unknown attribute")
	ErrProductNotFound     = errors.New("product not found")
	ErrCategoryInUse       = errors.New("category still has products")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidValue        = errors.New("invalid value")
)
