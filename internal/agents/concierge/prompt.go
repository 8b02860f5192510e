package concierge

import (
	"strings"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Fallback instruction blocks used when no sysprompt file is configured
const (
	supportFallback = `You are a customer support assistant answering over a business messaging channel.
Answer questions about the company and its products using only the knowledge provided below.
Stay concise, stay in character, and hand unclear requests back to a human politely.`

	schedulerFallback = `You are a scheduling assistant answering over a business messaging channel.
Help customers book, reschedule and cancel appointments using only the knowledge provided below.
Confirm date and time explicitly before treating an appointment as booked.`
)

// fallbackFor returns the built-in instruction block for an agent type
func fallbackFor(agentType provision.AgentType) string {
	if agentType == provision.AgentTypeScheduler {
		return schedulerFallback
	}
	return supportFallback
}

// BuildInstructions assembles the full system prompt: the behavioral base for
// the agent type followed by the tenant's free-text configuration sections
func BuildInstructions(base string, cfg provision.AgentConfig) string {
	var b strings.Builder
	b.WriteString(base)

	sections := []struct {
		title string
		text  string
	}{
		{"Personality", cfg.Personality},
		{"How to present yourself", cfg.Presentation},
		{"Company knowledge", cfg.CompanyKnowledge},
		{"Product knowledge", cfg.ProductKnowledge},
	}
	for _, section := range sections {
		if section.text == "" {
			continue
		}
		b.WriteString("\n\n## ")
		b.WriteString(section.title)
		b.WriteString("\n")
		b.WriteString(section.text)
	}
	return b.String()
}
