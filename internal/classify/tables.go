package classify

import "github.com/felixgeelhaar/taskweave/internal/domain"

// PhaseRules are the keyword sets used to place clusters into build phases.
// Rule order is significant: a cluster matching foundational keywords is
// foundational even if it also matches UI keywords.
func PhaseRules() []Rule {
	return []Rule{
		{Tag: domain.PhaseFoundational.String(), Keywords: []string{"database", "schema", "model", "setup", "config", "init"}},
		{Tag: domain.PhaseUIPolish.String(), Keywords: []string{"ui", "polish", "styling", "animation", "visual", "color", "css"}},
		{Tag: domain.PhaseBusiness.String(), Keywords: []string{"api", "handler", "service"}},
	}
}

// NewPhaseClassifier returns a classifier tagging text with phase names.
func NewPhaseClassifier() *KeywordClassifier {
	return NewKeywordClassifier(PhaseRules())
}

// CategoryFileRules map category keywords to the files tasks in that
// category usually touch. Tags are file names.
func CategoryFileRules() []Rule {
	return []Rule{
		{Tag: "security.py", Keywords: []string{"security"}},
		{Tag: "sanitizer.py", Keywords: []string{"security"}},
		{Tag: "admin_handlers.py", Keywords: []string{"admin"}},
		{Tag: "onboarding.py", Keywords: []string{"onboarding"}},
		{Tag: "database.py", Keywords: []string{"database", "storage"}},
		{Tag: "models.py", Keywords: []string{"database", "data model"}},
		{Tag: "api_server.py", Keywords: []string{"api"}},
		{Tag: "ui.py", Keywords: []string{"ui", "interface"}},
		{Tag: "cache.py", Keywords: []string{"performance"}},
		{Tag: "integrations.py", Keywords: []string{"integration"}},
		{Tag: "README.md", Keywords: []string{"documentation", "docs"}},
	}
}

// PrefixFileRules map task id prefixes to implied files. Used with MatchExact.
func PrefixFileRules() []Rule {
	return []Rule{
		{Tag: "security.py", Keywords: []string{"sec"}},
		{Tag: "sanitizer.py", Keywords: []string{"sec"}},
		{Tag: "admin_handlers.py", Keywords: []string{"ac"}},
		{Tag: "onboarding.py", Keywords: []string{"onb"}},
		{Tag: "database.py", Keywords: []string{"db"}},
		{Tag: "api_server.py", Keywords: []string{"api"}},
		{Tag: "ui.py", Keywords: []string{"ui"}},
		{Tag: "cache.py", Keywords: []string{"perf"}},
		{Tag: "integrations.py", Keywords: []string{"int"}},
	}
}

// ModuleVocabulary lists module names recognised in free text. A hit on
// "auth" yields "auth.py".
func ModuleVocabulary() []string {
	return []string{
		"admin_handlers", "api_server", "auth", "bot", "cache", "config",
		"database", "handlers", "integrations", "models", "notifications",
		"onboarding", "rate_limiter", "sanitizer", "scheduler", "security",
		"settings", "storage", "ui", "utils",
	}
}
