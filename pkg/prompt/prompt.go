package prompt

import (
	_ "embed"
	"strings"
)

//go:embed prompt/generate.md
var generateInstructions string

// Build wraps a context fragment with the generation instructions and the
// output format the parser accepts
func Build(contextFragment string) string {
	var b strings.Builder
	b.WriteString(contextFragment)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(generateInstructions))
	return strings.TrimSpace(b.String())
}
