package models

// Page is one 1-indexed slice of an ordered result set.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
}
