package extractor

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/IvanShishkin/buildid/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// RuleFile represents a YAML classification rule file
type RuleFile struct {
	Rules []*models.Rule `yaml:"rules"`
}

// DefaultRules returns the built-in classification rules
func DefaultRules() (*models.RuleSet, error) {
	return ParseRules(defaultRules)
}

// LoadRules loads classification rules from a YAML file. An empty path
// yields the built-in rules.
func LoadRules(path string) (*models.RuleSet, error) {
	if path == "" {
		return DefaultRules()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	rs, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return rs, nil
}

// ParseRules decodes and validates a YAML rule document
func ParseRules(data []byte) (*models.RuleSet, error) {
	var ruleFile RuleFile
	if err := yaml.Unmarshal(data, &ruleFile); err != nil {
		return nil, err
	}

	rs := models.NewRuleSet()
	for i, rule := range ruleFile.Rules {
		if rule == nil {
			continue
		}
		if rule.ID == "" {
			rule.ID = fmt.Sprintf("rule-%d", i+1)
		}
		if err := validateRule(rule); err != nil {
			return nil, fmt.Errorf("invalid rule %s: %w", rule.ID, err)
		}
		rs.AddRule(rule)
	}

	return rs, nil
}

func validateRule(rule *models.Rule) error {
	if len(rule.Patterns) == 0 {
		return fmt.Errorf("no patterns")
	}

	switch rule.Category {
	case models.CategoryArchitecture:
		if !models.IsValidArchitecture(models.Architecture(rule.Value)) {
			return fmt.Errorf("unknown architecture %q", rule.Value)
		}
	case models.CategoryFileType:
		if !models.IsValidFileType(models.FileType(rule.Value)) {
			return fmt.Errorf("unknown file type %q", rule.Value)
		}
	case models.CategoryDebugInfo, models.CategoryNotStripped:
	default:
		return fmt.Errorf("unknown category %q", rule.Category)
	}
	return nil
}

// Classify applies rules to file(1) output and updates info in place.
// Unmatched categories keep their current values.
func Classify(rules *models.RuleSet, output string, info *models.FileInfo) {
	if r := rules.First(models.CategoryArchitecture, output); r != nil {
		info.Architecture = models.Architecture(r.Value)
	}
	if r := rules.First(models.CategoryFileType, output); r != nil {
		info.FileType = models.FileType(r.Value)
	}
	if rules.First(models.CategoryDebugInfo, output) != nil {
		info.HasDebugInfo = true
	}
	if rules.First(models.CategoryNotStripped, output) != nil {
		info.IsStripped = false
	}
}
