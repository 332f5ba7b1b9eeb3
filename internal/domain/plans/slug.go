package plans

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug generates a URL-safe slug from a plan name.
// Example: "Gold Care Plan" -> "gold-care-plan"
func MakeSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = "plan"
	}
	return base
}

// UniqueSlug returns MakeSlug(name), suffixed with -2, -3, … until no other
// plan uses it. excludeID is the plan being renamed, or 0.
func UniqueSlug(db *gorm.DB, name string, excludeID uint) (string, error) {
	base := MakeSlug(name)
	candidate := base
	for n := 2; ; n++ {
		var count int64
		if err := db.Model(&Plan{}).
			Where("slug = ? AND id <> ?", candidate, excludeID).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
