// Package models contains data structures for the application's domain models.
package models

import "strings"

// Category is one of the fixed board sections a post is filed under.
type Category string

const (
	// CategoryGossip holds celebrity and society gossip.
	CategoryGossip Category = "gossip"
	// CategoryRumor holds unconfirmed "I heard that..." reports.
	CategoryRumor Category = "rumor"
	// CategoryAmazing holds unbelievable true stories.
	CategoryAmazing Category = "amazing"
)

// CategoryAll is the pseudo-category that disables category filtering.
const CategoryAll Category = "all"

// CategoryInfo carries display metadata for a category.
type CategoryInfo struct {
	Key        Category `json:"key"`
	Label      string   `json:"label"`
	ShortLabel string   `json:"shortLabel"`
}

// Categories lists the board sections in display order.
var Categories = []CategoryInfo{
	{Key: CategoryGossip, Label: "Gossip of the World", ShortLabel: "Gossip"},
	{Key: CategoryRumor, Label: "Rumor Wire", ShortLabel: "Rumor"},
	{Key: CategoryAmazing, Label: "Can You Believe It", ShortLabel: "Amazing"},
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGossip, CategoryRumor, CategoryAmazing:
		return true
	default:
		return false
	}
}

// ParseCategory normalizes raw and returns it if it names a fixed category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	return c, c.Valid()
}

// GetCategoryInfo returns the metadata for key, falling back to the first category.
func GetCategoryInfo(key Category) CategoryInfo {
	for _, info := range Categories {
		if info.Key == key {
			return info
		}
	}
	return Categories[0]
}
