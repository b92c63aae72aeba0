package dto

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=255"`
}
