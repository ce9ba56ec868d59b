package genai

import (
	"google.golang.org/genai"

	"github.com/alienxp03/arena/provider"
)

// BuildContents maps a request onto Gemini contents. The caller's own past
// answers become model turns; instructions and the opponent's words become
// user turns labelled with their speaker. Adjacent turns with the same role
// are merged because the API expects roles to alternate.
func BuildContents(req *provider.Request) []*genai.Content {
	var contents []*genai.Content

	add := func(role genai.Role, text string) {
		if n := len(contents); n > 0 && contents[n-1].Role == string(role) {
			contents[n-1].Parts = append(contents[n-1].Parts, genai.NewPartFromText(text))
			return
		}
		contents = append(contents, genai.NewContentFromText(text, role))
	}

	for _, m := range req.History {
		if m.Role == provider.RoleAssistant {
			add(genai.RoleModel, m.Content)
			continue
		}
		text := m.Content
		if m.Speaker != "" {
			text = "[" + m.Speaker + "] " + text
		}
		add(genai.RoleUser, text)
	}
	add(genai.RoleUser, req.Prompt)

	return contents
}
