package eslint

import (
	"regexp"
	"strings"
)

// .eslintrc.js files are JavaScript, not JSON, but in practice almost every
// one is a plain object literal. These passes strip the JS-isms (comments,
// single quotes, bare keys, trailing commas, the common NODE_ENV severity
// ternary) so the result parses as JSON. Best effort: anything fancier than
// an object literal still fails downstream validation.
var (
	reComments    = regexp.MustCompile(`(?s)//.*?\n|/\*.*?\*/`)
	reEnvTernary  = regexp.MustCompile(`process\.env\.NODE_ENV\s*===\s*['"]production['"]\s*\?\s*['"]error['"]\s*:\s*['"]warn['"]`)
	reBareKey     = regexp.MustCompile(`(?m)(^|[\s{,\[])([A-Za-z0-9_-]+)(\s*):`)
	reExtends     = regexp.MustCompile(`(?s)"extends"\s*:\s*\[(.*?)\]`)
	reTrailingSep = regexp.MustCompile(`,(\s*[}\]])`)
)

// CleanSource turns a module.exports-style ESLint config source into JSON.
func CleanSource(content string) string {
	content = strings.Replace(content, "module.exports =", "", 1)

	content = reComments.ReplaceAllString(content, "")
	content = reEnvTernary.ReplaceAllString(content, `"warn"`)
	content = strings.ReplaceAll(content, "'", `"`)
	content = reBareKey.ReplaceAllString(content, `$1"$2"$3:`)
	content = preprocessExtends(content)
	content = reTrailingSep.ReplaceAllString(content, "$1")

	return strings.TrimSpace(content)
}

// preprocessExtends re-quotes the entries of an "extends" array. Shareable
// config names like eslint:recommended and plugin:react/recommended contain
// colons, so the bare-key pass above may have mangled their quoting.
func preprocessExtends(content string) string {
	return reExtends.ReplaceAllStringFunc(content, func(match string) string {
		inner := reExtends.FindStringSubmatch(match)[1]

		var entries []string
		for _, line := range strings.Split(inner, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimSuffix(line, ",")
			line = strings.Trim(line, `"`)
			if line == "" {
				continue
			}
			entries = append(entries, `"`+line+`"`)
		}

		return `"extends": [` + strings.Join(entries, ", ") + `]`
	})
}
