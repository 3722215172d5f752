package eslint

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Severity is an ESLint rule severity after normalization. ESLint accepts
// both numeric (0/1/2) and string ("off"/"warn"/"error") encodings; both
// collapse onto this enum.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity normalizes one severity encoding. Anything outside the two
// legal encodings is an error so callers can skip the rule.
func ParseSeverity(v gjson.Result) (Severity, error) {
	switch v.Type {
	case gjson.Number:
		switch int(v.Int()) {
		case 0:
			return SeverityOff, nil
		case 1:
			return SeverityWarn, nil
		case 2:
			return SeverityError, nil
		}
		return SeverityOff, fmt.Errorf("numeric severity out of range: %s", v.Raw)
	case gjson.String:
		switch v.Str {
		case "off":
			return SeverityOff, nil
		case "warn":
			return SeverityWarn, nil
		case "error":
			return SeverityError, nil
		}
		return SeverityOff, fmt.Errorf("unknown severity string: %q", v.Str)
	}
	return SeverityOff, fmt.Errorf("severity is neither number nor string: %s", v.Raw)
}

// Rule is one entry of a resolved ESLint configuration's "rules" section,
// flattened: name, normalized severity, and the rule's options in their
// original order (empty when the entry was a bare severity).
type Rule struct {
	Name     string
	Severity Severity
	Options  []gjson.Result
}

// Normalize flattens the "rules" section of a resolved ESLint configuration
// into an ordered rule list. Entries whose severity can't be parsed are
// skipped and reported as warnings; the rest of the config survives.
func Normalize(raw []byte) ([]Rule, []string) {
	var (
		rules    []Rule
		warnings []string
	)

	doc := gjson.ParseBytes(raw)
	section := doc.Get("rules")
	if !section.Exists() || !section.IsObject() {
		warnings = append(warnings, "no rules section found in configuration")
		return nil, warnings
	}

	section.ForEach(func(key, value gjson.Result) bool {
		rule, err := normalizeEntry(key.Str, value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping rule %q: %s", key.Str, err))
			return true
		}
		rules = append(rules, rule)
		return true
	})

	return rules, warnings
}

func normalizeEntry(name string, value gjson.Result) (Rule, error) {
	switch {
	case value.IsArray():
		parts := value.Array()
		if len(parts) == 0 {
			return Rule{}, fmt.Errorf("empty rule array")
		}
		sev, err := ParseSeverity(parts[0])
		if err != nil {
			return Rule{}, err
		}
		return Rule{Name: name, Severity: sev, Options: parts[1:]}, nil
	case value.IsObject():
		// A bare object means "error" with the object as the only option.
		return Rule{Name: name, Severity: SeverityError, Options: []gjson.Result{value}}, nil
	default:
		sev, err := ParseSeverity(value)
		if err != nil {
			return Rule{}, err
		}
		return Rule{Name: name, Severity: sev}, nil
	}
}

// Load parses configuration content into a normalized rule list. Valid JSON
// (the output of `eslint --print-config`) is consumed directly; anything
// else is assumed to be a .eslintrc.js-style source and cleaned first.
func Load(content []byte) ([]Rule, []string, error) {
	if !gjson.ValidBytes(content) {
		cleaned := CleanSource(string(content))
		if !gjson.Valid(cleaned) {
			return nil, nil, fmt.Errorf("configuration is neither valid JSON nor a cleanable JS config")
		}
		content = []byte(cleaned)
	}
	rules, warnings := Normalize(content)
	return rules, warnings, nil
}
