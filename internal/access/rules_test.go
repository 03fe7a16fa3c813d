package access

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRuleExactAndPrefix(t *testing.T) {
	exact := TaskRule{Name: "RepGen Dry operations"}
	assert.True(t, exact.Matches("repgen dry operations"))
	assert.False(t, exact.Matches("RepGen Dry operations extra"))

	prefix := TaskRule{Name: "Contingencies", Prefix: true}
	assert.True(t, prefix.Matches("Contingencies"))
	assert.True(t, prefix.Matches("Contingencies (30%)"))
	assert.False(t, prefix.Matches("Other Contingencies"))
}

func TestMatchRestrictedSubstring(t *testing.T) {
	rules := RuleSet{RestrictedTasks: []string{"NGS Dry Operations"}}

	name, ok := rules.MatchRestricted("2024 NGS Dry Operations (lab)")
	require.True(t, ok)
	assert.Equal(t, "NGS Dry Operations", name)

	_, ok = rules.MatchRestricted("NGS Wet Operations")
	assert.False(t, ok)
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
restricted_tasks = ["NGS Dry Operations", "PM Dry Operations"]
authorized_users = ["Jane Doe"]
authorized_groups = ["Research Projects Management Group"]
restricted_principals = ["US.LAB.RND", "John Smith"]

[[authorized_task]]
name = "NGS Reagents and Lab Operations Cost"

[[authorized_task]]
name = "Contingencies"
prefix = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules.AuthorizedTasks, 2)
	assert.True(t, rules.AuthorizedTasks[1].Prefix)
	assert.Equal(t, []string{"Jane Doe"}, rules.AuthorizedUsers)

	_, ok := rules.MatchAuthorized("Contingencies (30%)")
	assert.True(t, ok)
}

func TestLoadRulesRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(`authorized_users = ["x"]`), 0o644))

	_, err := LoadRules(path)
	require.ErrorIs(t, err, ErrEmptyRuleSet)
}
