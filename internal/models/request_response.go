package models

import "encoding/json"

// Opt is a patch field: Set reports whether the key was present in the
// request, Value is nil when it was present as null.
type Opt[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: &v}
}

// Null returns a set Opt holding null.
func Null[T any]() Opt[T] {
	return Opt[T]{Set: true}
}

// UnmarshalJSON is only invoked for keys present in the document.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Unwrap returns the present value as *T, or nil when the key was absent
// or null.
func (o Opt[T]) Unwrap() interface{} {
	if o.Value == nil {
		return nil
	}
	return o.Value
}

// Request models. Patch fields accept null only when tagged nullable.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=255"`
	Group     string `json:"group" binding:"required,max=255"`
	AddressID *int64 `json:"address_id"`
}

type UpdateUserRequest struct {
	Username  Opt[string] `json:"username" binding:"omitempty,min=1,max=255"`
	Group     Opt[string] `json:"group" binding:"omitempty,min=1,max=255"`
	AddressID Opt[int64]  `json:"address_id" binding:"omitempty,nullable"`
}

type CreateAddressRequest struct {
	StreetAddr string `json:"street_addr" binding:"required,max=80"`
	City       string `json:"city" binding:"required,max=40"`
	Region     string `json:"region" binding:"required,max=40"`
	Zip        string `json:"zip" binding:"required,max=10"`
	Country    string `json:"country" binding:"required,max=20"`
}

type UpdateAddressRequest struct {
	StreetAddr Opt[string] `json:"street_addr" binding:"omitempty,min=1,max=80"`
	City       Opt[string] `json:"city" binding:"omitempty,min=1,max=40"`
	Region     Opt[string] `json:"region" binding:"omitempty,min=1,max=40"`
	Zip        Opt[string] `json:"zip" binding:"omitempty,min=1,max=10"`
	Country    Opt[string] `json:"country" binding:"omitempty,min=1,max=20"`
}

type CreateBookRequest struct {
	Name       string  `json:"name" binding:"required,max=100"`
	Author     string  `json:"author" binding:"required,max=100"`
	Translator *string `json:"translator" binding:"omitempty,max=100"`
	Genre      *string `json:"genre" binding:"omitempty,max=100"`
	Year       *int    `json:"year"`
	Publisher  *string `json:"publisher" binding:"omitempty,max=100"`
	ISBN       *string `json:"isbn" binding:"omitempty,max=20"`
}

type UpdateBookRequest struct {
	Name       Opt[string] `json:"name" binding:"omitempty,min=1,max=100"`
	Author     Opt[string] `json:"author" binding:"omitempty,min=1,max=100"`
	Translator Opt[string] `json:"translator" binding:"omitempty,nullable,max=100"`
	Genre      Opt[string] `json:"genre" binding:"omitempty,nullable,max=100"`
	Year       Opt[int]    `json:"year" binding:"omitempty,nullable"`
	Publisher  Opt[string] `json:"publisher" binding:"omitempty,nullable,max=100"`
	ISBN       Opt[string] `json:"isbn" binding:"omitempty,nullable,max=20"`
}

// BookRefRequest is the body of library and wishlist POSTs
type BookRefRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

type UpdateLibraryEntryRequest struct {
	Hidden Opt[bool]   `json:"hidden" binding:"omitempty"`
	Status Opt[string] `json:"status" binding:"omitempty,min=1,max=255"`
}

type UpdateLibraryRequest struct {
	HiddenLib *bool `json:"hidden_lib" binding:"required"`
}

// Response models
type ErrorResponse struct {
	ErrorMessage string `json:"ErrorMessage"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
