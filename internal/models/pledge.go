package models

import (
	"strings"
	"time"

	"github.com/julianstephens/stackspledge/internal/constants"
)

// Category is the short tag a pledge is filed under. The ledger stores it as free
// text, so values outside the known set are possible.
type Category string

const (
	CategoryHealth   Category = "health"
	CategoryFitness  Category = "fitness"
	CategoryLearning Category = "learning"
	CategoryFinance  Category = "finance"
	CategoryCareer   Category = "career"
	CategoryCreative Category = "creative"
	CategorySocial   Category = "social"
	CategoryGeneral  Category = "general"
)

// Categories lists the known categories in display order
var Categories = []Category{
	CategoryHealth,
	CategoryFitness,
	CategoryLearning,
	CategoryFinance,
	CategoryCareer,
	CategoryCreative,
	CategorySocial,
	CategoryGeneral,
}

var categoryEmojis = map[Category]string{
	CategoryHealth:   "💪",
	CategoryFitness:  "🏃",
	CategoryLearning: "📚",
	CategoryFinance:  "💰",
	CategoryCareer:   "💼",
	CategoryCreative: "🎨",
	CategorySocial:   "🤝",
	CategoryGeneral:  "✨",
}

// Emoji returns the display symbol for the category, falling back to the general one
func (c Category) Emoji() string {
	if e, ok := categoryEmojis[c]; ok {
		return e
	}
	return categoryEmojis[CategoryGeneral]
}

// Known reports whether c is one of the client-side categories
func (c Category) Known() bool {
	_, ok := categoryEmojis[c]
	return ok
}

// ParseCategory normalizes s and checks it against the known categories
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryGeneral, true
	}
	return c, c.Known()
}

// CategoryList joins the known categories for help and error text
func CategoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Truncated returns the category as sent to the ledger (bounded ASCII)
func (c Category) Truncated() string {
	s := string(c)
	if len(s) > constants.MaxCategoryLength {
		s = s[:constants.MaxCategoryLength]
	}
	return s
}

type Pledge struct {
	ID          uint64   `json:"id"`
	Creator     string   `json:"creator"`
	Message     string   `json:"message"`
	Category    Category `json:"category"`
	Vouches     uint64   `json:"vouches"`
	Completed   bool     `json:"completed"`
	CreatedAt   int64    `json:"created_at"`
	CompletedAt *int64   `json:"completed_at,omitempty"`
}

// IsCreator reports whether address created the pledge
func (p Pledge) IsCreator(address string) bool {
	return address != "" && p.Creator == address
}

// CanVouch mirrors the actions the UI offers: open pledges created by someone else
func (p Pledge) CanVouch(address string) bool {
	return address != "" && !p.Completed && !p.IsCreator(address)
}

// CanComplete reports whether address may submit a completion for the pledge
func (p Pledge) CanComplete(address string) bool {
	return !p.Completed && p.IsCreator(address)
}

// MarkCompleted sets the completion flag and timestamp
func (p *Pledge) MarkCompleted(at time.Time) {
	ts := at.Unix()
	p.Completed = true
	p.CompletedAt = &ts
}
