// Package access implements the two-step task access procedure: grant access
// on tasks matching an allow rule set, revoke access on tasks matching a deny
// list. All rules live in a TOML file passed in by the operator; nothing is
// hard-coded.
package access

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// TaskRule matches task names. Exact match is case-insensitive; with Prefix
// set, names that start with Name also match, so "Contingencies" covers
// "Contingencies (30%)".
type TaskRule struct {
	Name   string `toml:"name"`
	Prefix bool   `toml:"prefix"`
}

func (r TaskRule) Matches(taskName string) bool {
	have := strings.ToLower(strings.TrimSpace(taskName))
	want := strings.ToLower(strings.TrimSpace(r.Name))
	if have == want {
		return true
	}
	return r.Prefix && strings.HasPrefix(have, want)
}

// RuleSet is the operator-supplied access policy.
type RuleSet struct {
	AuthorizedTasks []TaskRule `toml:"authorized_task"`
	RestrictedTasks []string   `toml:"restricted_tasks"`

	AuthorizedUsers  []string `toml:"authorized_users"`
	AuthorizedGroups []string `toml:"authorized_groups"`

	// RestrictedPrincipals may name users or groups.
	RestrictedPrincipals []string `toml:"restricted_principals"`
}

var ErrEmptyRuleSet = errors.New("rule set names no tasks")

func LoadRules(path string) (*RuleSet, error) {
	var rules RuleSet
	if _, err := toml.DecodeFile(path, &rules); err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return &rules, nil
}

func (r *RuleSet) Validate() error {
	if len(r.AuthorizedTasks) == 0 && len(r.RestrictedTasks) == 0 {
		return ErrEmptyRuleSet
	}
	for _, rule := range r.AuthorizedTasks {
		if strings.TrimSpace(rule.Name) == "" {
			return errors.New("authorized_task entry with empty name")
		}
	}
	return nil
}

// MatchAuthorized returns the first allow rule matching the task name.
func (r *RuleSet) MatchAuthorized(taskName string) (TaskRule, bool) {
	for _, rule := range r.AuthorizedTasks {
		if rule.Matches(taskName) {
			return rule, true
		}
	}
	return TaskRule{}, false
}

// MatchRestricted reports whether the task name contains a deny-list name.
// Substring matching mirrors how restricted tasks were matched historically.
func (r *RuleSet) MatchRestricted(taskName string) (string, bool) {
	have := strings.ToLower(taskName)
	for _, name := range r.RestrictedTasks {
		if strings.Contains(have, strings.ToLower(name)) {
			return name, true
		}
	}
	return "", false
}
