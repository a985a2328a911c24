package dto

// Pointer fields distinguish "absent" from zero values: quantity=0 and
// is_done=false are valid payloads and must pass the required check.

// CreateEssenceRequest is the JSON body for POST /essences and elements of POST /essences/bulk.
type CreateEssenceRequest struct {
	Name     *string `json:"name" binding:"required,max=255"`
	Quantity *int64  `json:"quantity" binding:"required,gte=0"`
	IsDone   *bool   `json:"is_done"` // optional, defaults to false
}

// ReplaceEssenceRequest is the JSON body for PUT /essences/:id. Every field is required.
type ReplaceEssenceRequest struct {
	Name     *string `json:"name" binding:"required,max=255"`
	Quantity *int64  `json:"quantity" binding:"required,gte=0"`
	IsDone   *bool   `json:"is_done" binding:"required"`
}

// UpdateEssenceRequest is the JSON body for PATCH /essences/:id.
// nil = не менять, значение = поставить.
type UpdateEssenceRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Quantity *int64  `json:"quantity" binding:"omitempty,gte=0"`
	IsDone   *bool   `json:"is_done"`
}

// ListEssencesQuery binds the query string of GET /essences.
type ListEssencesQuery struct {
	Name        string `form:"name"`
	IsDone      *bool  `form:"is_done"`
	MinQuantity *int64 `form:"min_quantity" binding:"omitempty,gte=0"`
	MaxQuantity *int64 `form:"max_quantity" binding:"omitempty,gte=0"`
	Limit       int    `form:"limit,default=10" binding:"min=1,max=100"`
	Offset      int    `form:"offset,default=0" binding:"gte=0"`
}

// EssenceResponse is the output shape for every operation that returns a record.
type EssenceResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	IsDone   bool   `json:"is_done"`
}
