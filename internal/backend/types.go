package backend

import "encoding/json"

// The backend wraps every response in the same envelope. Payloads live under
// data and are decoded in a second step once success has been checked.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// ProductDTO is a product exactly as the backend ships it. Field names follow
// the backend schema; callers map it to the canonical shape before storing it
// anywhere (see catalog.FromBackend).
type ProductDTO struct {
	ID          string      `json:"id"`
	Nombre      string      `json:"nombre"`
	Descripcion string      `json:"descripcion,omitempty"`
	Precio      json.Number `json:"precio"`
	Categoria   string      `json:"categoria"`
	Material    string      `json:"material,omitempty"`
	Color       string      `json:"color,omitempty"`
	ImagenURL   string      `json:"imagen_url,omitempty"`
	Destacado   int         `json:"destacado"`
	Activo      int         `json:"activo"`
}

// CategoryDTO is a category as the backend ships it.
type CategoryDTO struct {
	Slug        string `json:"slug"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	ImagenURL   string `json:"imagen_url,omitempty"`
	Orden       int    `json:"orden"`
}

// UserDTO is a user record as the backend ships it.
type UserDTO struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	NombreCompleto string `json:"nombre_completo"`
	Telefono       string `json:"telefono,omitempty"`
}

// ProductFilter narrows a product listing. Nil/empty fields are omitted from
// the query string; booleans are sent as 0/1 per the backend convention.
type ProductFilter struct {
	Active   *bool
	Category string
	Featured *bool
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	NombreCompleto string `json:"nombre_completo"`
	Telefono       string `json:"telefono,omitempty"`
}

// AuthResponse carries the token pair and user returned by register/login.
type AuthResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         UserDTO `json:"user"`
}
