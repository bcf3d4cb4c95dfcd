package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
)

const (
	labelRecipeName   = "Recipe Name:"
	labelIngredients  = "Ingredients:"
	labelInstructions = "Instructions:"
)

type section int

const (
	sectionNone section = iota
	sectionIngredients
	sectionInstructions
)

// stepPattern matches a numbered step such as "1. " or "2) "
var stepPattern = regexp.MustCompile(`^\d+[.)]\s`)

// stepPrefix strips the step number including any whitespace after it
var stepPrefix = regexp.MustCompile(`^\d+[.)]\s*`)

// Parse converts a model reply into a meal. It never fails: text that does not
// follow the output format leaves the corresponding fields empty.
func Parse(raw string) *model.Meal {
	meal := &model.Meal{
		Ingredients:  []string{},
		Instructions: []string{},
	}

	current := sectionNone
	var step string

	flush := func() {
		if step != "" {
			meal.Instructions = append(meal.Instructions, step)
			step = ""
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, labelRecipeName):
			meal.RecipeName = strings.TrimSpace(strings.TrimPrefix(line, labelRecipeName))
			current = sectionNone

		case strings.HasPrefix(line, labelIngredients):
			current = sectionIngredients

		case strings.HasPrefix(line, labelInstructions):
			flush()
			current = sectionInstructions

		case line == "":
			// blank lines separate, never continue

		case current == sectionIngredients:
			if !strings.HasPrefix(line, "-") {
				continue
			}
			item := strings.TrimSpace(strings.TrimLeft(line, "-"))
			item = strings.TrimSpace(strings.ReplaceAll(item, "*", ""))
			if item != "" {
				meal.Ingredients = append(meal.Ingredients, item)
			}

		case current == sectionInstructions:
			if stepPattern.MatchString(line) {
				flush()
				step = stepPrefix.ReplaceAllString(line, "")
			} else if step != "" {
				step += " " + line
			}
		}
	}
	flush()

	return meal
}

// MarshalJSON renders a meal as the indented JSON artifact kept for
// downstream use
func MarshalJSON(meal *model.Meal) ([]byte, error) {
	data, err := json.MarshalIndent(meal, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal meal", goerr.V("recipe_name", meal.RecipeName))
	}
	return data, nil
}
