package evalkit

import "strings"

// Categories in report order.
var Categories = []string{
	"technical", "behavioral", "cognitive", "analytical", "communication", "leadership",
}

// categoryKeywords matches assessments to balance categories by substring
// over the lowercased name and description. An assessment can land in
// several categories.
var categoryKeywords = map[string][]string{
	"technical": {
		"python", "java", "javascript", "sql", ".net", "c#", "c++",
		"html", "css", "selenium", "programming", "coding", "development",
	},
	"behavioral":    {"personality", "opq", "behaviour", "behavior", "team", "work style"},
	"leadership":    {"leadership", "manager", "management", "enterprise"},
	"cognitive":     {"verify", "reasoning", "inductive", "deductive", "cognitive", "ability"},
	"analytical":    {"data", "analysis", "numerical", "excel", "tableau", "warehouse"},
	"communication": {"communication", "english", "writing", "spoken", "interpersonal"},
}

// Item is the minimal view of a recommendation the metrics need.
type Item struct {
	Name        string
	Description string
}

// Categorize buckets recommendations into balance categories. Every
// category is present in the result, possibly empty.
func Categorize(items []Item) map[string][]string {
	out := make(map[string][]string, len(Categories))
	for _, cat := range Categories {
		out[cat] = []string{}
	}

	for _, item := range items {
		name := strings.ToLower(item.Name)
		desc := strings.ToLower(item.Description)
		for _, cat := range Categories {
			for _, kw := range categoryKeywords[cat] {
				if strings.Contains(name, kw) || strings.Contains(desc, kw) {
					out[cat] = append(out[cat], item.Name)
					break
				}
			}
		}
	}
	return out
}

// Distribution converts category buckets into fractions of the total
// recommendation count.
func Distribution(categorized map[string][]string, total int) map[string]float64 {
	out := make(map[string]float64, len(categorized))
	for cat, names := range categorized {
		if total > 0 {
			out[cat] = float64(len(names)) / float64(total)
		} else {
			out[cat] = 0
		}
	}
	return out
}
