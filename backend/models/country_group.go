package models

import (
	"strings"
	"time"
)

// CountryGroup is a saved set of countries for side-by-side comparison
type CountryGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	Countries   string    `gorm:"type:text" json:"countries"` // Comma-separated slugs: "china,india,japan"
	Color       string    `json:"color"`                      // UI tag color (hex or name)
	IsBuiltin   bool      `gorm:"default:false" json:"is_builtin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MaxGroupSize mirrors the comparison view limit
const MaxGroupSize = 4

// Slugs returns the member slugs in stored order.
func (g CountryGroup) Slugs() []string {
	var out []string
	for _, s := range strings.Split(g.Countries, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeCountries lower-cases, slugifies and de-duplicates a comma-separated
// member list, keeping at most MaxGroupSize entries.
func NormalizeCountries(csv string) string {
	seen := map[string]bool{}
	var normalized []string
	for _, raw := range strings.Split(csv, ",") {
		slug := Slugify(strings.TrimSpace(raw))
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		normalized = append(normalized, slug)
		if len(normalized) == MaxGroupSize {
			break
		}
	}
	return strings.Join(normalized, ",")
}

// SeedDefaultGroups returns the built-in comparison groups
func SeedDefaultGroups() []CountryGroup {
	return []CountryGroup{
		{
			Name:        "Largest Economies",
			Description: "Top economies by GDP (PPP) in 2010",
			Countries:   "united_states,china,japan,india",
			Color:       "#22c55e",
			IsBuiltin:   true,
		},
		{
			Name:        "BRIC",
			Description: "Brazil, Russia, India, China",
			Countries:   "brazil,russia,india,china",
			Color:       "#eab308",
			IsBuiltin:   true,
		},
		{
			Name:        "Korean Peninsula",
			Description: "North and South Korea with regional neighbours",
			Countries:   "korea_south,korea_north,japan,china",
			Color:       "#06b6d4",
			IsBuiltin:   true,
		},
		{
			Name:        "Eurozone Core",
			Description: "Largest eurozone economies",
			Countries:   "germany,france,italy,spain",
			Color:       "#3b82f6",
			IsBuiltin:   true,
		},
	}
}
