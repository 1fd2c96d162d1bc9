package summarization

import (
	"encoding/json"
	"strings"

	"github.com/Sakshi281205/sleeppeddlers/internal/jobs"
)

const systemPrompt = "You are a helpful medical assistant."

const promptHeader = "You are an expert radiologist assistant. " +
	"Summarize the following findings for emergency physicians:\n\n"

const promptFooter = "\n\nPlease provide:\n" +
	"1. KEY FINDINGS (2-3 sentences)\n" +
	"2. CLINICAL SIGNIFICANCE (Critical/Moderate/Low)\n" +
	"3. RECOMMENDED ACTIONS (Immediate steps)\n" +
	"4. FOLLOW-UP (If needed)\n"

// BuildPrompt embeds the analysis document as JSON context.
func BuildPrompt(analysis *jobs.AnalysisDocument) string {
	data, _ := json.Marshal(analysis)

	var b strings.Builder
	b.WriteString(promptHeader)
	b.Write(data)
	b.WriteString(promptFooter)
	return b.String()
}
