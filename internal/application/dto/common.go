package dto

// ErrorResponse cuerpo de error HTTP. Details identifica la línea o cantidad rechazada.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CursorPage metadatos de paginación por cursor. NextCursor 0 = última página.
type CursorPage struct {
	Limit      int   `json:"limit"`
	NextCursor int64 `json:"next_cursor,omitempty"`
}
