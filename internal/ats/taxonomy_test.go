package ats

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleKeywordsFallback(t *testing.T) {
	assert.Equal(t, roleKeywords["general"], RoleKeywords("astronaut"))
	assert.Equal(t, roleKeywords["general"], RoleKeywords(""))
	assert.Equal(t, roleKeywords["software-engineer"], RoleKeywords("software-engineer"))
}

func TestKnownRole(t *testing.T) {
	assert.True(t, KnownRole("general"))
	assert.True(t, KnownRole("data-scientist"))
	assert.False(t, KnownRole("astronaut"))
}

func TestRolesSortedAndComplete(t *testing.T) {
	roles := Roles()
	assert.Len(t, roles, 9)
	assert.True(t, sort.StringsAreSorted(roles))
	assert.Contains(t, roles, "general")
	assert.Contains(t, roles, "software-engineer")
	assert.Contains(t, roles, "human-resources")
}

func TestKeywordsAreLowercase(t *testing.T) {
	for role, keywords := range roleKeywords {
		for _, kw := range keywords {
			assert.Equal(t, strings.ToLower(kw), kw, "role %s keyword %q", role, kw)
		}
	}
}

func TestActionVerbsDeduplicated(t *testing.T) {
	verbs := ActionVerbs()
	seen := make(map[string]bool)
	for _, verb := range verbs {
		assert.False(t, seen[verb], "verb %q listed twice", verb)
		seen[verb] = true
	}

	// "established" appears in two categories but only once in the
	// flattened list
	total := 0
	for _, category := range actionVerbCategories {
		total += len(category)
	}
	assert.Equal(t, total-1, len(verbs))
	assert.Contains(t, verbs, "established")
}

func TestWeakPhrasesAndPowerWords(t *testing.T) {
	assert.Len(t, WeakPhrases(), 8)
	assert.Contains(t, WeakPhrases(), "responsible for")
	assert.Len(t, PowerWords(), 10)
}
