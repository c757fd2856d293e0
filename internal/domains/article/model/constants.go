package model

import "strings"

const (
	// Content limits
	MinTitleLength   = 5
	MaxTitleLength   = 255
	MaxExcerptLength = 500
	MaxReasonLength  = 1000

	// Pagination
	DefaultPageSize = 9
	MaxPageSize     = 100
)

// Categories là danh mục tin cố định của portal
var Categories = []string{
	"Nasional",
	"Internasional",
	"Bisnis",
	"Olahraga",
	"Teknologi",
	"Gaya Hidup",
	"Otomotif",
	"Kesehatan",
	"Pemerintahan",
	"Hukum",
	"Hiburan",
}

// NormalizeCategory maps a case-insensitive category name to its canonical
// spelling. Returns false for unknown categories.
func NormalizeCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}
