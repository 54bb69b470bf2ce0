// Package catalog holds installer-side metadata the manifest does not carry:
// additional agent categories and human-readable names for prompts.
package catalog

import "sort"

// Editor IDs with installer behavior attached to them.
const (
	EditorULPI    = "ulpi"
	EditorCursor  = "cursor"
	EditorAmazonQ = "amazonq"
	EditorClaude  = "claude"
	EditorCodex   = "codex"
)

// Category groups optional agents offered next to the framework agent.
type Category struct {
	ID          string
	Name        string
	Description string
	Agents      []Agent
}

// Agent is an optional agent identifier with a short label.
type Agent struct {
	ID    string
	Label string
}

// AdditionalCategories lists the non-framework agent categories, in prompt order.
var AdditionalCategories = []Category{
	{
		ID:          "infrastructure",
		Name:        "Infrastructure & DevOps",
		Description: "Deployment, containers, cloud platforms",
		Agents: []Agent{
			{ID: "devops-docker", Label: "DevOps Docker - Containerization, Docker Compose, orchestration"},
			{ID: "devops-aws", Label: "DevOps AWS - Cloud architecture, IaC, serverless, CI/CD"},
		},
	},
	{
		ID:          "collaboration",
		Name:        "Team Collaboration",
		Description: "Code review, planning, documentation",
	},
}

// IsAdditionalAgent reports whether id belongs to an additional category.
func IsAdditionalAgent(id string) bool {
	_, ok := AgentCategory(id)
	return ok
}

// AgentCategory returns the category ID of an additional agent.
func AgentCategory(id string) (string, bool) {
	for _, c := range AdditionalCategories {
		for _, a := range c.Agents {
			if a.ID == id {
				return c.ID, true
			}
		}
	}
	return "", false
}

// AdditionalAgentIDs returns every additional agent ID, sorted.
func AdditionalAgentIDs() []string {
	var ids []string
	for _, c := range AdditionalCategories {
		for _, a := range c.Agents {
			ids = append(ids, a.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

var editorNames = map[string]string{
	EditorULPI:    "ULPI",
	EditorCursor:  "Cursor",
	EditorAmazonQ: "Amazon Q",
	EditorClaude:  "Claude Code",
	EditorCodex:   "GitHub Codex",
}

var frameworkNames = map[string]string{
	"laravel":           "Laravel 12.x",
	"express":           "Express.js",
	"nestjs":            "NestJS",
	"nextjs":            "Next.js 14/15",
	"remix":             "Remix",
	"expo-react-native": "Expo React Native",
	"flutter":           "Flutter",
	"magento":           "Magento 2",
}

// EditorName returns the display name of an editor, falling back to its ID.
func EditorName(id string) string {
	if n, ok := editorNames[id]; ok {
		return n
	}
	return id
}

// FrameworkName returns the display name of a framework, falling back to its ID.
func FrameworkName(id string) string {
	if n, ok := frameworkNames[id]; ok {
		return n
	}
	return id
}
