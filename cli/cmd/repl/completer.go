package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/mial/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "source", "reset", "history", "clear", "quit"}

// isIdentRune reports whether r can appear in an identifier.
func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the identifier at the cursor and its byte boundaries
// within input. Returns an empty word when the cursor sits between two
// non-identifier characters.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word that
// starts at wordStart. For input "x + Math.sq" with the word "sq", the
// parent path is "Math". Returns "" for words not preceded by a dot.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && !isIdentRune(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// candidates returns the completions available after parent. The top level
// offers every global name and keyword; after a dot it offers the fields of
// the object the parent path resolves to.
func candidates(s *Session, parent string) []string {
	if s == nil {
		return nil
	}

	if parent == "" {
		names := slices.Concat(s.Names(), lang.Keywords)
		slices.Sort(names)

		return slices.Compact(names)
	}

	v, ok := s.Lookup(parent)
	if !ok {
		return nil
	}

	obj, ok := lang.Raw(v).(*lang.Object)
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(obj.Fields))
}

// callable reports whether the dotted path names a function in s.
func callable(s *Session, path string) bool {
	if s == nil {
		return false
	}

	v, ok := s.Lookup(path)
	if !ok {
		return false
	}

	switch lang.Raw(v).(type) {
	case *lang.Function, *lang.Builtin:
		return true
	}

	return false
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// ranked best-first. An empty word at the top level has no matches so that
// the hint line stays visible; an empty word after a dot matches every
// member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	names []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	parent := ""

	if m.mode == modeCtrl {
		if word == "" || wordStart > 0 {
			return nil, nil, wordStart, wordEnd
		}

		names = ctrlCommands
	} else {
		parent = parentPath(input, wordStart)
		names = candidates(m.session, parent)

		if word == "" {
			if parent == "" || len(names) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(names))
			for i, c := range names {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, names, wordStart, wordEnd
		}
	}

	if len(names) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, names), names, wordStart, wordEnd
}

// qualify joins a completion candidate to the parent path it was offered
// under.
func qualify(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate uses the selected style while
// tab-cycling. isCall marks candidates rendered with a "()" suffix.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isCall func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isCall != nil && isCall(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && i < len(matches)-1 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected, fn bool) string {
	base := suggestionStyle
	highlight := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		base = selectedStyle
		highlight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if fn {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// preview renders a short description of a global binding for the list
// command.
func preview(v lang.Value) string {
	const width = 40

	switch v := v.(type) {
	case *lang.Function:
		return signatureOf(v.Name, v.Params)
	case *lang.Builtin:
		if sig, ok := builtinSignatures[v.Name]; ok {
			return sig.signature
		}

		return v.Name + "()"
	}

	s := v.Type() + " " + v.String()
	if len(s) > width {
		return s[:width-3] + "..."
	}

	return s
}
