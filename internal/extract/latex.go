package extract

import (
	_ "embed"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed macros.yaml
var macrosYAML []byte

// latexMacros holds the whitelisted macro names, longest first so a scan
// always takes the longest match (e.g. "textbf" before "text").
var latexMacros = loadMacros()

func loadMacros() []string {
	var list struct {
		Macros []string `yaml:"macros"`
	}
	if err := yaml.Unmarshal(macrosYAML, &list); err != nil {
		panic("extract: invalid embedded macros.yaml: " + err.Error())
	}
	sort.Slice(list.Macros, func(i, j int) bool {
		return len(list.Macros[i]) > len(list.Macros[j])
	})
	return list.Macros
}

// repairEscapes doubles single backslashes that precede a whitelisted macro
// name. The exam payload is a JSON string, so every control-sequence
// backslash must appear doubled; models frequently emit just one. Runs of
// two or more backslashes are already escaped and are left alone, as is any
// name not on the whitelist. Best-effort textual repair, not a LaTeX parser.
func repairEscapes(s string) string {
	var b []byte
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b = append(b, s[i])
			i++
			continue
		}

		// Measure the backslash run.
		j := i
		for j < len(s) && s[j] == '\\' {
			j++
		}
		run := j - i

		if run == 1 {
			if name := matchMacro(s[j:]); name != "" {
				b = append(b, '\\', '\\')
				b = append(b, name...)
				i = j + len(name)
				continue
			}
		}

		b = append(b, s[i:j]...)
		i = j
	}
	return string(b)
}

// matchMacro returns the longest whitelisted macro name at the start of s,
// requiring a non-letter boundary so "\pi" never matches inside "\pivot".
func matchMacro(s string) string {
	for _, name := range latexMacros {
		if len(s) < len(name) || s[:len(name)] != name {
			continue
		}
		if len(s) > len(name) && isLetter(s[len(name)]) {
			continue
		}
		return name
	}
	return ""
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
