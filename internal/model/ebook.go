// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// DefaultEbookColor is the palette token used for new ebooks.
const DefaultEbookColor = "bg-blue-50"

// ColorOption is a named palette token.
type ColorOption struct {
	Name  string
	Value string
}

// EbookColors is the fixed palette ebooks may use.
var EbookColors = []ColorOption{
	{Name: "Blue", Value: "bg-blue-50"},
	{Name: "Purple", Value: "bg-purple-50"},
	{Name: "Indigo", Value: "bg-indigo-50"},
	{Name: "Green", Value: "bg-green-50"},
	{Name: "Yellow", Value: "bg-yellow-50"},
	{Name: "Red", Value: "bg-red-50"},
}

// Ebook is a downloadable ebook offered on the site.
type Ebook struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Color       string `json:"color" validate:"required,palette"`
	PDFURL      string `json:"pdfUrl,omitempty" validate:"omitempty,url"`
}

// NewEbook returns a blank ebook with form defaults applied.
func NewEbook() Ebook {
	return Ebook{Color: DefaultEbookColor}
}

// GetID returns the ebook identifier.
func (e Ebook) GetID() ID {
	return e.ID
}

// IsValidColor checks if color is a palette token.
func IsValidColor(color string) bool {
	for _, c := range EbookColors {
		if c.Value == color {
			return true
		}
	}
	return false
}
