// utils/names.go
package utils

import (
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a display name, folds inner whitespace and puts it in
// NFC so visually equal names compare equal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// Handle derives the URL-safe handle shown next to a display name,
// e.g. "João Ninja" -> "joao-ninja".
func Handle(name string) string {
	return slug.Make(name)
}
