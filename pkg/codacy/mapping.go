package codacy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lintbridge/lintbridge/pkg/eslint"
)

// Parameter is one named pattern parameter as the Codacy API expects it.
// Values are always strings on the wire; structured option values get
// JSON-encoded.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Pattern is one enabled pattern of a coding standard.
type Pattern struct {
	ID         string      `json:"id"`
	Enabled    bool        `json:"enabled"`
	Severity   string      `json:"severity,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// severityLevels maps every enabled ESLint severity onto its Codacy level.
// SeverityOff never reaches this table; Map drops disabled rules first.
var severityLevels = map[eslint.Severity]string{
	eslint.SeverityWarn:  "Warning",
	eslint.SeverityError: "Error",
}

// PatternID converts an ESLint rule name to its Codacy pattern id. Codacy's
// ESLint pattern catalog prefixes ids with ESLint8_ and flattens plugin
// slashes to underscores.
func PatternID(rule string) string {
	return "ESLint8_" + strings.ReplaceAll(rule, "/", "_")
}

type transformFunc func(opts []gjson.Result) ([]Parameter, error)

type ruleMapping struct {
	supported bool
	transform transformFunc // nil means objectParams
}

func stringValue(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

// objectParams is the default option translation: every key of every
// object-shaped option becomes a parameter, scalar options are dropped.
func objectParams(opts []gjson.Result) ([]Parameter, error) {
	var params []Parameter
	for _, opt := range opts {
		if !opt.IsObject() {
			continue
		}
		opt.ForEach(func(k, v gjson.Result) bool {
			params = append(params, Parameter{Name: k.Str, Value: stringValue(v)})
			return true
		})
	}
	return params, nil
}

// firstScalar translates rules whose first option is a scalar mode flag,
// like semi's "always"/"never". Trailing object options still contribute.
func firstScalar(name string) transformFunc {
	return func(opts []gjson.Result) ([]Parameter, error) {
		if len(opts) == 0 {
			return nil, nil
		}
		if opts[0].IsObject() || opts[0].IsArray() {
			return nil, fmt.Errorf("expected scalar first option, got %s", opts[0].Raw)
		}
		params := []Parameter{{Name: name, Value: stringValue(opts[0])}}
		rest, _ := objectParams(opts[1:])
		return append(params, rest...), nil
	}
}

// firstNumber translates rules configured by a single numeric threshold,
// accepting the object form too (e.g. complexity: ["error", {"max": 10}]).
func firstNumber(name string) transformFunc {
	return func(opts []gjson.Result) ([]Parameter, error) {
		if len(opts) == 0 {
			return nil, nil
		}
		if opts[0].Type == gjson.Number {
			return []Parameter{{Name: name, Value: opts[0].Raw}}, nil
		}
		if opts[0].IsObject() {
			return objectParams(opts)
		}
		return nil, fmt.Errorf("expected numeric first option, got %s", opts[0].Raw)
	}
}

// ruleTable is the static ESLint-rule → Codacy-pattern mapping. Read-only
// after init; rules absent here simply have no Codacy counterpart.
var ruleTable = map[string]ruleMapping{
	"arrow-parens":                {supported: true, transform: firstScalar("requireForBlockBody")},
	"brace-style":                 {supported: true, transform: firstScalar("style")},
	"camelcase":                   {supported: true},
	"comma-dangle":                {supported: true, transform: firstScalar("mode")},
	"comma-spacing":               {supported: true},
	"complexity":                  {supported: true, transform: firstNumber("max")},
	"consistent-return":           {supported: true},
	"curly":                       {supported: true, transform: firstScalar("mode")},
	"default-case":                {supported: true},
	"dot-notation":                {supported: true},
	"eqeqeq":                      {supported: true, transform: firstScalar("mode")},
	"guard-for-in":                {supported: true},
	"indent":                      {supported: true, transform: firstNumber("indent")},
	"key-spacing":                 {supported: true},
	"keyword-spacing":             {supported: true},
	"linebreak-style":             {supported: true, transform: firstScalar("style")},
	"max-depth":                   {supported: true, transform: firstNumber("max")},
	"max-len":                     {supported: true, transform: firstNumber("code")},
	"max-lines":                   {supported: true, transform: firstNumber("max")},
	"max-params":                  {supported: true, transform: firstNumber("max")},
	"new-cap":                     {supported: true},
	"no-alert":                    {supported: true},
	"no-caller":                   {supported: true},
	"no-console":                  {supported: true},
	"no-debugger":                 {supported: true},
	"no-dupe-keys":                {supported: true},
	"no-duplicate-imports":        {supported: true},
	"no-else-return":              {supported: true},
	"no-empty":                    {supported: true},
	"no-eval":                     {supported: true},
	"no-extend-native":            {supported: true},
	"no-extra-bind":               {supported: true},
	"no-fallthrough":              {supported: true},
	"no-floating-decimal":         {supported: true},
	"no-implicit-coercion":        {supported: true},
	"no-lone-blocks":              {supported: true},
	"no-loop-func":                {supported: true},
	"no-magic-numbers":            {supported: true},
	"no-multi-spaces":             {supported: true},
	"no-multiple-empty-lines":     {supported: true},
	"no-new-func":                 {supported: true},
	"no-param-reassign":           {supported: true},
	"no-redeclare":                {supported: true},
	"no-return-assign":            {supported: true, transform: firstScalar("mode")},
	"no-self-compare":             {supported: true},
	"no-sequences":                {supported: true},
	"no-shadow":                   {supported: true},
	"no-throw-literal":            {supported: true},
	"no-trailing-spaces":          {supported: true},
	"no-undef":                    {supported: true},
	"no-unused-expressions":       {supported: true},
	"no-unused-vars":              {supported: true},
	"no-use-before-define":        {supported: true},
	"no-useless-concat":           {supported: true},
	"no-var":                      {supported: true},
	"no-with":                     {supported: true},
	"object-curly-spacing":        {supported: true, transform: firstScalar("mode")},
	"padded-blocks":               {supported: true, transform: firstScalar("mode")},
	"prefer-arrow-callback":       {supported: true},
	"prefer-const":                {supported: true},
	"quotes":                      {supported: true, transform: firstScalar("style")},
	"radix":                       {supported: true, transform: firstScalar("mode")},
	"semi":                        {supported: true, transform: firstScalar("semi")},
	"space-before-blocks":         {supported: true},
	"space-before-function-paren": {supported: true, transform: firstScalar("mode")},
	"space-in-parens":             {supported: true, transform: firstScalar("mode")},
	"spaced-comment":              {supported: true, transform: firstScalar("mode")},
	"strict":                      {supported: true, transform: firstScalar("mode")},
	"wrap-iife":                   {supported: true, transform: firstScalar("mode")},
	"yoda":                        {supported: true, transform: firstScalar("mode")},

	"import/no-unresolved": {supported: true},
	"react/jsx-key":        {supported: true},
	"react/no-deprecated":  {supported: true},

	// Known rules Codacy's catalog does not cover.
	"prettier/prettier":              {supported: false},
	"vue/multi-word-component-names": {supported: false},
}

// Map converts one normalized rule into its Codacy pattern, or nothing.
// Disabled rules produce no pattern and no warning. Unmapped or unsupported
// rules produce no pattern plus a warning. An option translation failure
// degrades to an empty parameter set rather than dropping the rule.
func Map(rule eslint.Rule) (*Pattern, string) {
	if rule.Severity == eslint.SeverityOff {
		return nil, ""
	}

	m, ok := ruleTable[rule.Name]
	if !ok {
		return nil, fmt.Sprintf("no Codacy pattern mapping for rule %q, rule skipped", rule.Name)
	}
	if !m.supported {
		return nil, fmt.Sprintf("rule %q has no Codacy equivalent, rule skipped", rule.Name)
	}

	transform := m.transform
	if transform == nil {
		transform = objectParams
	}

	warning := ""
	params, err := transform(rule.Options)
	if err != nil {
		params = nil
		warning = fmt.Sprintf("rule %q: could not translate options (%s), configured without parameters", rule.Name, err)
	}

	return &Pattern{
		ID:         PatternID(rule.Name),
		Enabled:    true,
		Severity:   severityLevels[rule.Severity],
		Parameters: params,
	}, warning
}

// MapRules maps a whole rule list, preserving input order.
func MapRules(rules []eslint.Rule) ([]Pattern, []string) {
	var (
		patterns []Pattern
		warnings []string
	)
	for _, rule := range rules {
		pattern, warning := Map(rule)
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if pattern != nil {
			patterns = append(patterns, *pattern)
		}
	}
	return patterns, warnings
}

// SupportedRules lists the ESLint rules the table can translate, sorted.
func SupportedRules() []string {
	var names []string
	for name, m := range ruleTable {
		if m.supported {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
