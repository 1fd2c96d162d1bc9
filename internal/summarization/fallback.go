package summarization

import (
	"strings"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
)

// HighSeverityTemplate is used when findings mention hemorrhage or urgency.
const HighSeverityTemplate = "KEY FINDINGS: Potential urgent abnormality detected. " +
	"CLINICAL SIGNIFICANCE: HIGH - immediate physician review required. " +
	"RECOMMENDED ACTIONS: Emergency evaluation and specialist consult. " +
	"FOLLOW-UP: Formal radiology interpretation within 1 hour."

// LowSeverityTemplate is used for every other finding.
const LowSeverityTemplate = "KEY FINDINGS: No acute abnormalities detected on initial AI screening. " +
	"CLINICAL SIGNIFICANCE: Low. " +
	"RECOMMENDED ACTIONS: Routine clinical correlation recommended. " +
	"FOLLOW-UP: As needed."

var severeTerms = []string{"hemorrhage", "urgent"}

// Fallback selects a template by case-insensitive substring match on the
// findings label.
func Fallback(analysis *jobs.AnalysisDocument) string {
	findings := strings.ToLower(analysis.AIAnalysis.Findings)
	for _, term := range severeTerms {
		if strings.Contains(findings, term) {
			return HighSeverityTemplate
		}
	}
	return LowSeverityTemplate
}
