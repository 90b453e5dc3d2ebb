package ollama

import (
	"fmt"
	"strings"
)

func buildLabelPrompt(labels []string) string {
	var list strings.Builder
	for _, l := range labels {
		fmt.Fprintf(&list, "- %s\n", l)
	}

	return `You are a clothing image classifier.
Pick exactly one label from the candidate list that best describes the garment in the image.
Return strict JSON object with keys:
label (string, copied verbatim from the list), confidence (number from 0 to 1).
No markdown, no extra keys.

Candidates:
` + list.String()
}
