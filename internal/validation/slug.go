package validation

import (
	"fmt"
	"regexp"
)

// SlugPattern defines the accepted campaign slug format: lowercase letters,
// digits and hyphens, starting and ending with a letter or digit. The slug
// names the local database file and appears in sync URLs, so it is validated
// on both sides.
var SlugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

const (
	// MinSlugLen is the minimum campaign slug length
	MinSlugLen = 1
	// MaxSlugLen is the maximum campaign slug length
	MaxSlugLen = 64
)

// ValidateSlug checks that a campaign slug matches the required format.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("campaign slug cannot be empty")
	}

	if len(slug) > MaxSlugLen {
		return fmt.Errorf("campaign slug must not exceed %d characters", MaxSlugLen)
	}

	if !SlugPattern.MatchString(slug) {
		return fmt.Errorf("campaign slug can only contain lowercase letters (a-z), numbers (0-9) and hyphens, and cannot start or end with a hyphen")
	}

	return nil
}
