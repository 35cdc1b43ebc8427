package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/mial/lang"
)

type signature struct {
	signature string
	params    []string
}

func builtin(name string, params ...string) signature {
	return signature{signatureOf(name, params), params}
}

// builtinSignatures describes the parameters of the host built-ins, keyed by
// their qualified name.
var builtinSignatures = map[string]signature{
	"confidence":        builtin("confidence", "value"),
	"uncertainty":       builtin("uncertainty", "value"),
	"validate":          builtin("validate", "value"),
	"integrate":         builtin("integrate", "value"),
	"reason_about":      builtin("reason_about", "subject"),
	"know":              builtin("know", "subject"),
	"seek":              builtin("seek", "subject"),
	"seek_more_data":    builtin("seek_more_data", "subject"),
	"conclude":          builtin("conclude", "value"),
	"combine":           builtin("combine", "a", "b", "operator"),
	"update_confidence": builtin("update_confidence", "value", "weight", "confidence"),

	"self.updateConfidence": builtin("self.updateConfidence", "delta"),
	"self.reflect":          builtin("self.reflect"),

	"console.log":   builtin("console.log", "...values"),
	"console.error": builtin("console.error", "...values"),

	"Math.abs":    builtin("Math.abs", "x"),
	"Math.floor":  builtin("Math.floor", "x"),
	"Math.ceil":   builtin("Math.ceil", "x"),
	"Math.round":  builtin("Math.round", "x"),
	"Math.sqrt":   builtin("Math.sqrt", "x"),
	"Math.log":    builtin("Math.log", "x"),
	"Math.exp":    builtin("Math.exp", "x"),
	"Math.sin":    builtin("Math.sin", "x"),
	"Math.cos":    builtin("Math.cos", "x"),
	"Math.pow":    builtin("Math.pow", "base", "exponent"),
	"Math.min":    builtin("Math.min", "...values"),
	"Math.max":    builtin("Math.max", "...values"),
	"Math.random": builtin("Math.random"),
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string // dotted callee, such as "Math.pow"
	argIndex int    // 0-based argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before the cursor and
// the index of the argument being typed.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open := -1
	depth := 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')', ']':
			depth++
		case '(', '[':
			if depth > 0 {
				depth--
			} else if r == '(' {
				open = i
			} else {
				return functionCall{}
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" || lang.IsKeyword(name) {
		return functionCall{}
	}

	argIndex := 0
	depth = 0
	quote := rune(0)

	for _, r := range input[open+1 : cursor] {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == ',' && depth == 0:
			argIndex++
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// signatureFor returns the signature of the function the dotted name
// resolves to in s, or an empty signature.
func signatureFor(s *Session, name string) (string, []string) {
	if s == nil {
		return "", nil
	}

	v, ok := s.Lookup(name)
	if !ok {
		return "", nil
	}

	switch fn := lang.Raw(v).(type) {
	case *lang.Function:
		return signatureOf(name, fn.Params), fn.Params

	case *lang.Builtin:
		if sig, ok := builtinSignatures[name]; ok {
			return sig.signature, sig.params
		}

		return name + "(...)", nil
	}

	return "", nil
}

func signatureOf(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders a signature with the parameter at argIndex
// highlighted. A variadic last parameter stays highlighted for every
// argument past it.
func renderSignatureHint(sig string, params []string, argIndex int) string {
	if sig == "" {
		return ""
	}

	open := strings.Index(sig, "(")
	if open < 0 || len(params) == 0 {
		return signatureNameStyle.Render(sig[:max(open, 0)]) +
			signatureStyle.Render(sig[max(open, 0):])
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(p, "...")

		if argIndex == i || (variadic && argIndex > i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
