package extract

import "testing"

func TestRepairEscapesDoublesWhitelistedMacros(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single macro", `$\frac{1}{2}$`, `$\\frac{1}{2}$`},
		{"consecutive macros", `\left(\frac{a}{b}\right)`, `\\left(\\frac{a}{b}\\right)`},
		{"greek letter", `$\pi r^2$`, `$\\pi r^2$`},
		{"chemistry", `$\ce{H2O}$`, `$\\ce{H2O}$`},
		{"environment", `\begin{align}x\end{align}`, `\\begin{align}x\\end{align}`},
		{"macro at end of string", `value of \pi`, `value of \\pi`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repairEscapes(tt.input); got != tt.want {
				t.Errorf("repairEscapes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairEscapesLeavesAloneWhatIsAlreadyEscaped(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"already doubled", `$\\frac{1}{2}$`},
		{"quadruple run", `\\\\frac`},
		{"no backslashes", `plain text with frac and sqrt words`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repairEscapes(tt.input); got != tt.input {
				t.Errorf("repairEscapes(%q) = %q, want unchanged", tt.input, got)
			}
		})
	}
}

func TestRepairEscapesWhitelistBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// \pi must not match inside a longer unknown name.
		{"prefix of unknown macro", `\pivot`, `\pivot`},
		{"unknown macro", `\notamacro{x}`, `\notamacro{x}`},
		// Longest match: \textbf wins over \text.
		{"longest match", `\textbf{x}`, `\\textbf{x}`},
		{"macro followed by digit", `\pi2`, `\\pi2`},
		{"valid json escape left alone", `line\nbreak`, `line\nbreak`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repairEscapes(tt.input); got != tt.want {
				t.Errorf("repairEscapes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairEscapesIdempotent(t *testing.T) {
	inputs := []string{
		`$\frac{1}{2}$`,
		`\left(\frac{a}{b}\right)`,
		`$\\sqrt{2}$`,
	}
	for _, in := range inputs {
		once := repairEscapes(in)
		if twice := repairEscapes(once); twice != once {
			t.Errorf("repairEscapes not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestMacroWhitelistLoaded(t *testing.T) {
	if len(latexMacros) == 0 {
		t.Fatal("embedded macro whitelist is empty")
	}
	for i := 1; i < len(latexMacros); i++ {
		if len(latexMacros[i-1]) < len(latexMacros[i]) {
			t.Fatalf("whitelist not sorted longest first: %q before %q",
				latexMacros[i-1], latexMacros[i])
		}
	}
}
