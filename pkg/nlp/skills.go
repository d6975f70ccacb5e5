package nlp

import "strings"

// aliases groups spellings of the same skill. The first entry is canonical.
var aliases = [][]string{
	{"postgresql", "postgres"},
	{"kubernetes", "k8s"},
	{"go", "golang"},
	{"javascript", "js"},
	{"typescript", "ts"},
	{"rest api", "rest"},
	{"ci cd", "cicd"},
	{"node js", "nodejs", "node"},
	{"machine learning", "ml"},
	{"intelligence artificielle", "ia", "ai"},
	{"gestion de projet", "project management"},
	{"anglais", "english"},
	{"français", "french"},
}

var aliasIndex = func() map[string][]string {
	idx := map[string][]string{}
	for _, group := range aliases {
		for _, a := range group {
			idx[a] = group
		}
	}
	return idx
}()

// KnownSkills is the vocabulary searched in job offers to find skills a
// candidate does not list.
var KnownSkills = []string{
	"go", "python", "java", "javascript", "typescript", "php", "ruby", "rust", "c++", "c#", "kotlin", "swift", "scala",
	"react", "vue", "angular", "node js", "django", "spring", "symfony", "laravel",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch", "kafka", "rabbitmq",
	"docker", "kubernetes", "terraform", "ansible", "aws", "gcp", "azure", "linux", "ci cd", "git",
	"rest api", "graphql", "grpc", "microservices",
	"machine learning", "sql", "power bi", "excel", "figma", "scrum", "agile", "jira",
	"anglais", "gestion de projet",
}

// SkillVariants returns the normalized spellings under which a skill may
// appear in free text, the skill's own form first.
func SkillVariants(skill string) []string {
	base := NormalizeText(skill)
	if base == "" {
		return []string{}
	}
	out := []string{base}
	seen := map[string]struct{}{base: {}}
	add := func(s string) {
		if _, ok := seen[s]; ok || s == "" {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, a := range aliasIndex[base] {
		add(a)
	}
	// multi-word skills also match with every token replaced by its canonical form
	if parts := strings.Fields(base); len(parts) > 1 {
		for i, p := range parts {
			if group, ok := aliasIndex[p]; ok {
				parts[i] = group[0]
			}
		}
		add(strings.Join(parts, " "))
	}
	return out
}

// Canonical returns the canonical spelling of a skill.
func Canonical(skill string) string {
	base := NormalizeText(skill)
	if group, ok := aliasIndex[base]; ok {
		return group[0]
	}
	return base
}

// Mentions reports whether any spelling of skill occurs in normalizedText.
func Mentions(normalizedText, skill string) bool {
	for _, v := range SkillVariants(skill) {
		if ContainsPhrase(normalizedText, v) {
			return true
		}
	}
	return false
}
