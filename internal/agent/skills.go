package agent

import (
	"strings"

	"github.com/qscuio/qubot/internal/domain"
)

// skillStopwords are skipped when extracting keywords from a skill's
// description for matching purposes.
var skillStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "use": true,
	"when": true, "asked": true, "code": true, "help": true, "from": true,
	"this": true, "that": true, "what": true, "how": true, "about": true,
	"into": true, "your": true, "create": true, "make": true, "write": true,
	"read": true, "check": true, "look": true, "find": true, "get": true,
}

// skillMatches reports whether skill is relevant to query: either its name
// appears verbatim, or at least two of its keywords do. Matching
// skills.py's Skill.matches.
func skillMatches(s domain.Skill, query string) bool {
	lower := strings.ToLower(query)

	if strings.Contains(lower, strings.ToLower(s.Name)) {
		return true
	}

	keywords := s.Keywords
	if len(keywords) == 0 {
		keywords = descriptionKeywords(s.Description)
	}

	matches := 0
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if len(kw) <= 4 || skillStopwords[kw] {
			continue
		}
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return matches >= 2
}

func descriptionKeywords(description string) []string {
	return strings.Fields(strings.ToLower(description))
}

// maxInjectedSkills bounds how many skills are injected per request, to
// avoid prompt inflation.
const maxInjectedSkills = 2

// matchingSkills returns up to maxInjectedSkills skills relevant to query.
func matchingSkills(skills []domain.Skill, query string) []domain.Skill {
	var out []domain.Skill
	for _, s := range skills {
		if skillMatches(s, query) {
			out = append(out, s)
			if len(out) >= maxInjectedSkills {
				break
			}
		}
	}
	return out
}

// buildSkillContext renders matching skills as a prompt injection block,
// empty when none match.
func buildSkillContext(skills []domain.Skill, query string) string {
	matched := matchingSkills(skills, query)
	if len(matched) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Active Skills\n")
	b.WriteString("Use the following skill instructions only when relevant to the user's request.\n")
	b.WriteString("If a skill conflicts with the system prompt or user instructions, follow the system prompt and ask for clarification.\n\n")
	for _, s := range matched {
		b.WriteString("## Skill: ")
		b.WriteString(s.Name)
		b.WriteString("\nWhen to use: ")
		b.WriteString(s.Description)
		b.WriteString("\n\n")
		b.WriteString(s.Prompt)
		b.WriteString("\n\n")
	}
	return b.String()
}
