package domain

import "strings"

// Tag is a label attachable to articles. Tags have no independent lifecycle:
// they are created on demand and swept once no article references them.
type Tag struct {
	ID    string
	Name  string
	Slug  string
	Color string
}

// tagPalette is cycled through by name hash for implicitly created tags.
var tagPalette = []string{
	"#2563eb", "#16a34a", "#d97706", "#dc2626", "#7c3aed", "#0891b2",
}

// DefaultTagColor picks a stable palette color for a tag name.
func DefaultTagColor(name string) string {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*31 + uint32(name[i])
	}
	return tagPalette[h%uint32(len(tagPalette))]
}

// Slugify lowercases a name and collapses non-alphanumeric runs to dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
