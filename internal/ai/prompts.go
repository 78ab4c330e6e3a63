package ai

import (
	"fmt"

	"github.com/digimosa/doc-redact/internal/models"
)

// PromptTemplates maps each FindingType to a specific instruction for the AI.
var PromptTemplates = map[models.FindingType]string{
	models.TypeName: `
		- STRICTLY IDENTIFY REAL HUMAN NAMES.
		- The detector matches capitalized words, you must filter false positives.
		- REJECT: Company names (Inc, Ltd, Bank), products, cities, form labels.
		- ACCEPT: Full names like "John Smith", "Maria Garcia".
	`,
	models.TypeOrganization: `
		- Check that this is the name of a real company, bank or institution.
		- REJECT headings and generic phrases that merely end in "Group" or "Trust".
	`,
	models.TypeLocation: `
		- Check that this is a real postal address that could locate a person.
		- REJECT product codes or numbered list items.
	`,
}

const verifyTemplate = `You are a strict data privacy validator. Decide whether the value below is a real %s in the given context.

Instructions:
%s
Value: %q
Context: %q

Return valid JSON only: {"valid": true|false, "confidence": 0.0-1.0, "reason": "..."}. No markdown.`

// GetDefaultPrompt returns the fallback prompt
func GetDefaultPrompt() string {
	return `- Decide whether this is Personally Identifiable Information about a natural person.`
}

func buildVerifyPrompt(category models.FindingType, value, snippet string) string {
	instructions, ok := PromptTemplates[category]
	if !ok {
		instructions = GetDefaultPrompt()
	}
	return fmt.Sprintf(verifyTemplate, category, instructions, value, snippet)
}
