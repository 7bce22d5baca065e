package service

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const fallbackSlug = "post"

// Slugify lowercases title and collapses every run of characters outside
// [a-z0-9] into a single hyphen. An empty result becomes "post".
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}

// NewSlugSuffixer returns a generator of short, time-ordered suffixes used to
// disambiguate colliding slugs. nodeID must be in [0, 1023].
func NewSlugSuffixer(nodeID int64) (func() string, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("slug suffix node: %w", err)
	}
	return func() string {
		return node.Generate().Base36()
	}, nil
}
