package longpost

import (
	"strings"

	"github.com/rivo/uniseg"
)

const (
	teaserLimit = 140
	ellipsis    = "..."
)

// Teaser returns the one-line summary shown in place of a long post: its
// first line if that is shorter than 140 characters, otherwise the first
// 137 characters and "...". An empty first line yields placeholder.
// Characters are grapheme clusters.
func Teaser(content, placeholder string) string {
	first, _, _ := strings.Cut(content, "\n")
	if uniseg.GraphemeClusterCount(first) < teaserLimit {
		if first == "" {
			return placeholder
		}
		return first
	}
	return cutGraphemes(first, teaserLimit-len(ellipsis)) + ellipsis
}

func cutGraphemes(s string, n int) string {
	g := uniseg.NewGraphemes(s)
	end := 0
	for i := 0; i < n && g.Next(); i++ {
		_, end = g.Positions()
	}
	return s[:end]
}
