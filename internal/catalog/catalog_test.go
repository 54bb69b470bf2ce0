package catalog

import "testing"

func TestAgentCategory(t *testing.T) {
	cat, ok := AgentCategory("devops-aws")
	if !ok || cat != "infrastructure" {
		t.Errorf("AgentCategory(devops-aws) = %q, %v", cat, ok)
	}
	if IsAdditionalAgent("nextjs") {
		t.Error("framework agents are not additional agents")
	}
}

func TestNamesFallBackToID(t *testing.T) {
	if got := EditorName("claude"); got != "Claude Code" {
		t.Errorf("EditorName(claude) = %q", got)
	}
	if got := FrameworkName("rails"); got != "rails" {
		t.Errorf("FrameworkName(rails) = %q, want rails", got)
	}
}
