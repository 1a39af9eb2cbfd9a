package llm

import (
	"fmt"
	"strings"

	"github.com/hradek/fiskal/internal/model"
)

// RenderNarrativeMarkdown renders the narrative block as a standalone
// Markdown document. Returns "" when there is nothing to render, so
// callers can skip the file write entirely.
func RenderNarrativeMarkdown(n *model.LLMNarrative) string {
	if n == nil || !n.Enabled {
		return ""
	}

	var b strings.Builder

	b.WriteString("# LLM Narrative\n\n")
	b.WriteString("> ⚠️ GENERATED CONTENT. Every figure was determined independently by\n")
	b.WriteString("> the costing engine; the language model only wrote the prose.\n\n")

	fmt.Fprintf(&b, "- **Provider**: %s\n", n.Provider)
	fmt.Fprintf(&b, "- **Model**: %s\n", n.Model)
	fmt.Fprintf(&b, "- **Strict Sources Mode**: %t\n", n.StrictSources)
	b.WriteString("\n---\n\n")

	b.WriteString(n.NarrativeMD)
	b.WriteString("\n")

	if len(n.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range n.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
