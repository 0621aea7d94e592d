package models

import "strings"

// RuleCategory groups classification rules
type RuleCategory string

const (
	CategoryArchitecture RuleCategory = "architecture"
	CategoryFileType     RuleCategory = "file_type"
	CategoryDebugInfo    RuleCategory = "debug_info"
	CategoryNotStripped  RuleCategory = "not_stripped"
)

// Rule maps substrings of the lowercased `file` output to a value
type Rule struct {
	ID       string       `yaml:"id"`
	Category RuleCategory `yaml:"category"`
	Patterns []string     `yaml:"patterns"`
	Value    string       `yaml:"value"`
}

// Matches reports whether any of the rule patterns occurs in output.
// output is expected to be lowercased already.
func (r *Rule) Matches(output string) bool {
	for _, p := range r.Patterns {
		if p != "" && strings.Contains(output, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// RuleSet holds classification rules in evaluation order
type RuleSet struct {
	Rules      []*Rule
	ByCategory map[RuleCategory][]*Rule
}

// NewRuleSet creates an empty rule set
func NewRuleSet() *RuleSet {
	return &RuleSet{
		Rules:      make([]*Rule, 0),
		ByCategory: make(map[RuleCategory][]*Rule),
	}
}

// AddRule appends a rule; order of insertion is evaluation order
func (rs *RuleSet) AddRule(r *Rule) {
	rs.Rules = append(rs.Rules, r)
	rs.ByCategory[r.Category] = append(rs.ByCategory[r.Category], r)
}

// First returns the first rule of a category matching output
func (rs *RuleSet) First(category RuleCategory, output string) *Rule {
	for _, r := range rs.ByCategory[category] {
		if r.Matches(output) {
			return r
		}
	}
	return nil
}
