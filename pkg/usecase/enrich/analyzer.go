package enrich

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/mealgen/pkg/model"
)

const (
	noHistorySummary = "No previous meal history available."

	firstGenerationNeed = "First meal generation for this user. High variety and exploration encouraged."
	highRepetitionNeed  = "User prefers high variety. Detected %.0f%% meal repetition. Prioritize novel ingredients and cuisines."
	highDiversityNeed   = "User prefers high variety and has good diversity in past meals. Introduce new cuisines or ingredient combinations."
	mediumVarietyNeed   = "User prefers moderate variety. Balance between exploring new meals and returning to favorites."
	lowVarietyNeed      = "User prefers consistency. Can repeat favorite meal themes with slight variations."

	// repetitionThreshold is the rate above which high-variety users are pushed harder
	repetitionThreshold = 0.3
)

type category int

const (
	categoryCuisine category = iota
	categoryProtein
)

// keywords is scanned in this order and matches are reported in this order
var keywords = []struct {
	word     string
	category category
}{
	{"mediterranean", categoryCuisine},
	{"asian", categoryCuisine},
	{"thai", categoryCuisine},
	{"indian", categoryCuisine},
	{"mexican", categoryCuisine},
	{"italian", categoryCuisine},
	{"tofu", categoryProtein},
	{"chickpea", categoryProtein},
	{"lentil", categoryProtein},
	{"tempeh", categoryProtein},
}

// SummarizePatterns describes the cuisines and proteins found in a meal history
func SummarizePatterns(history []string) string {
	if len(history) == 0 {
		return noHistorySummary
	}

	counts := make([]int, len(keywords))
	for _, meal := range history {
		lower := strings.ToLower(meal)
		for i, kw := range keywords {
			if strings.Contains(lower, kw.word) {
				counts[i]++
			}
		}
	}

	var cuisines, proteins []string
	for i, kw := range keywords {
		if counts[i] == 0 {
			continue
		}
		switch kw.category {
		case categoryCuisine:
			cuisines = append(cuisines, kw.word)
		case categoryProtein:
			proteins = append(proteins, kw.word)
		}
	}

	return fmt.Sprintf("User has enjoyed %d previous meals. Cuisine preferences: %s. Preferred proteins: %s.",
		len(history),
		strings.Join(cuisines, ", "),
		strings.Join(proteins, ", "),
	)
}

// RepetitionRate returns 1 - distinct/total over exact meal names. An empty
// history has no repetition.
func RepetitionRate(history []string) float64 {
	if len(history) == 0 {
		return 0
	}

	distinct := make(map[string]struct{}, len(history))
	for _, meal := range history {
		distinct[meal] = struct{}{}
	}
	return 1 - float64(len(distinct))/float64(len(history))
}

// AssessVarietyNeed states how much novelty the next meal should bring
func AssessVarietyNeed(history []string, variety model.Variety) string {
	if len(history) < 2 {
		return firstGenerationNeed
	}

	rate := RepetitionRate(history)

	switch model.Variety(strings.ToLower(string(variety))) {
	case model.VarietyHigh:
		if rate > repetitionThreshold {
			return fmt.Sprintf(highRepetitionNeed, rate*100)
		}
		return highDiversityNeed
	case model.VarietyMedium:
		return mediumVarietyNeed
	default:
		return lowVarietyNeed
	}
}
