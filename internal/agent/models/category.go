// Package models defines the agent-side data model: sharing categories,
// per-category consent records, day-keyed health readings and share events.
package models

import "fmt"

// Category identifies one class of health data a user can opt into sharing.
type Category string

const (
	// CategoryActivity covers steps, calories and distance.
	CategoryActivity Category = "activity"
	// CategoryHeart covers heart-rate measurements.
	CategoryHeart Category = "heart"
	// CategorySleep covers sleep analysis.
	CategorySleep Category = "sleep"
)

// AllCategories lists the known categories in ascending id order. Display
// code relies on the ordering.
func AllCategories() []Category {
	return []Category{CategoryActivity, CategoryHeart, CategorySleep}
}

// ParseCategory validates a user-supplied category id.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryActivity, CategoryHeart, CategorySleep:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}
