package workshop

// CreateWorkshopRequest is the admin payload for creating a catalog item
type CreateWorkshopRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       int64    `json:"price"`
	Capacity    int      `json:"capacity" validate:"required"`
	Tags        []string `json:"tags"`
}

// UpdateWorkshopRequest carries optional field updates; nil means unchanged
type UpdateWorkshopRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *int64   `json:"price,omitempty"`
	Capacity    *int     `json:"capacity,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
