package codacy

import (
	"testing"

	"github.com/lintbridge/lintbridge/pkg/eslint"
)

func mustRules(t *testing.T, raw string) []eslint.Rule {
	t.Helper()
	rules, warnings := eslint.Normalize([]byte(raw))
	if len(warnings) != 0 {
		t.Fatalf("fixture produced warnings: %v", warnings)
	}
	return rules
}

func TestPatternID(t *testing.T) {
	tests := []struct {
		rule string
		want string
	}{
		{"semi", "ESLint8_semi"},
		{"no-unused-vars", "ESLint8_no-unused-vars"},
		{"react/jsx-key", "ESLint8_react_jsx-key"},
	}
	for _, tt := range tests {
		if got := PatternID(tt.rule); got != tt.want {
			t.Fatalf("PatternID(%q) = %q, want %q", tt.rule, got, tt.want)
		}
	}
}

func TestMapDropsDisabledRules(t *testing.T) {
	rules := mustRules(t, `{"rules": {"semi": 0, "quotes": "off"}}`)
	for _, rule := range rules {
		pattern, warning := Map(rule)
		if pattern != nil {
			t.Fatalf("disabled rule %q produced a pattern", rule.Name)
		}
		if warning != "" {
			t.Fatalf("disabled rule %q produced a warning: %s", rule.Name, warning)
		}
	}
}

func TestMapUnmappedRule(t *testing.T) {
	rules := mustRules(t, `{"rules": {"custom-unmapped-rule": 1}}`)
	pattern, warning := Map(rules[0])
	if pattern != nil {
		t.Fatalf("unmapped rule produced a pattern: %+v", pattern)
	}
	if warning == "" {
		t.Fatal("unmapped rule should produce a mapping warning")
	}
}

func TestMapUnsupportedRule(t *testing.T) {
	rules := mustRules(t, `{"rules": {"prettier/prettier": 2}}`)
	pattern, warning := Map(rules[0])
	if pattern != nil {
		t.Fatalf("unsupported rule produced a pattern: %+v", pattern)
	}
	if warning == "" {
		t.Fatal("unsupported rule should produce a mapping warning")
	}
}

func TestMapSeverityLevels(t *testing.T) {
	rules := mustRules(t, `{"rules": {"semi": "warn", "no-eval": 2}}`)

	warnPattern, _ := Map(rules[0])
	if warnPattern.Severity != "Warning" {
		t.Fatalf("warn should map to Warning, got %q", warnPattern.Severity)
	}
	errPattern, _ := Map(rules[1])
	if errPattern.Severity != "Error" {
		t.Fatalf("error should map to Error, got %q", errPattern.Severity)
	}
}

func TestMapScalarOptionTransform(t *testing.T) {
	rules := mustRules(t, `{"rules": {"semi": ["error", "always"]}}`)
	pattern, warning := Map(rules[0])
	if warning != "" {
		t.Fatalf("unexpected warning: %s", warning)
	}
	if len(pattern.Parameters) != 1 || pattern.Parameters[0].Name != "semi" || pattern.Parameters[0].Value != "always" {
		t.Fatalf("unexpected parameters: %+v", pattern.Parameters)
	}
}

func TestMapObjectOptionTransform(t *testing.T) {
	rules := mustRules(t, `{"rules": {"no-unused-vars": ["error", {"args": "none", "varsIgnorePattern": "^_"}]}}`)
	pattern, warning := Map(rules[0])
	if warning != "" {
		t.Fatalf("unexpected warning: %s", warning)
	}
	if len(pattern.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %+v", pattern.Parameters)
	}
	if pattern.Parameters[0].Name != "args" || pattern.Parameters[0].Value != "none" {
		t.Fatalf("unexpected first parameter: %+v", pattern.Parameters[0])
	}
}

func TestMapNumericThresholdTransform(t *testing.T) {
	rules := mustRules(t, `{"rules": {"max-len": ["warn", 120]}}`)
	pattern, warning := Map(rules[0])
	if warning != "" {
		t.Fatalf("unexpected warning: %s", warning)
	}
	if len(pattern.Parameters) != 1 || pattern.Parameters[0].Name != "code" || pattern.Parameters[0].Value != "120" {
		t.Fatalf("unexpected parameters: %+v", pattern.Parameters)
	}
}

func TestMapOptionMismatchDegrades(t *testing.T) {
	// semi expects a scalar first option; give it an object.
	rules := mustRules(t, `{"rules": {"semi": ["error", {"unexpected": true}]}}`)
	pattern, warning := Map(rules[0])
	if pattern == nil {
		t.Fatal("option mismatch must not drop the rule")
	}
	if len(pattern.Parameters) != 0 {
		t.Fatalf("degraded pattern should have no parameters, got %+v", pattern.Parameters)
	}
	if warning == "" {
		t.Fatal("option mismatch should produce a warning")
	}
}

func TestMapRulesScenario(t *testing.T) {
	rules := mustRules(t, `{"rules": {"no-unused-vars": 2, "semi": ["error", "always"]}}`)
	patterns, warnings := MapRules(rules)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	for _, p := range patterns {
		if p.Severity != "Error" {
			t.Fatalf("pattern %s should be Error severity, got %q", p.ID, p.Severity)
		}
		if !p.Enabled {
			t.Fatalf("pattern %s should be enabled", p.ID)
		}
	}
}

func TestMapRulesUnmappedOnly(t *testing.T) {
	rules := mustRules(t, `{"rules": {"custom-unmapped-rule": 1}}`)
	patterns, warnings := MapRules(rules)
	if len(patterns) != 0 {
		t.Fatalf("expected no patterns, got %d", len(patterns))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one mapping warning, got %v", warnings)
	}
}

func TestMapRulesDeterministic(t *testing.T) {
	raw := `{"rules": {"semi": 2, "quotes": 1, "no-eval": "error", "custom-x": 1}}`
	first, _ := MapRules(mustRules(t, raw))
	second, _ := MapRules(mustRules(t, raw))
	if len(first) != len(second) {
		t.Fatalf("pattern counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("pattern order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}
