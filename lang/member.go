package lang

import (
	"math"
	"unicode/utf8"
)

// Member returns the named field of an annotated value.
func (a *Annotated) Member(name string) (Value, bool) {
	switch name {
	case "value":
		return a.Inner, true
	case "type":
		return String(a.Class), true
	case "confidence":
		return Number(a.Confidence), true
	case "uncertainty":
		return Number(a.Uncertainty), true
	}

	if a.Range != nil {
		switch name {
		case "delta":
			return Number(a.Range.Delta), true
		case "min":
			return Number(a.Range.Min), true
		case "max":
			return Number(a.Range.Max), true
		}
	}

	return nil, false
}

// Member returns the named field of a symbol.
func (s *Symbol) Member(name string) (Value, bool) {
	switch name {
	case "name":
		return String(s.Name), true
	case "notation":
		return String(s.Notation), true
	case "confidence":
		return Number(s.Confidence), true
	case "value":
		return s.Value, true
	}

	return nil, false
}

// Member returns the named field of a graph. Relations are returned as a list
// of three-element lists.
func (g *Graph) Member(name string) (Value, bool) {
	switch name {
	case "name":
		return String(g.Name), true
	case "size":
		return Number(len(g.Relations)), true
	case "relations":
		rels := make([]Value, len(g.Relations))
		for i, r := range g.Relations {
			rels[i] = &List{Elems: []Value{r.Subject, r.Predicate, r.Object}}
		}

		return &List{Elems: rels}, true
	}

	return nil, false
}

// Member returns the named field of a function.
func (f *Function) Member(name string) (Value, bool) {
	switch name {
	case "name":
		return String(f.Name), true
	case "params":
		params := make([]Value, len(f.Params))
		for i, p := range f.Params {
			params[i] = String(p)
		}

		return &List{Elems: params}, true
	case "adaptations":
		return Number(f.Adaptations), true
	}

	return nil, false
}

// Member returns the length of a list.
func (l *List) Member(name string) (Value, bool) {
	if name == "length" {
		return Number(len(l.Elems)), true
	}

	return nil, false
}

// Member returns the named field of an object.
func (o *Object) Member(name string) (Value, bool) {
	if o.Dynamic != nil {
		if v, ok := o.Dynamic(name); ok {
			return v, true
		}
	}

	v, ok := o.Fields[name]

	return v, ok
}

type memberer interface {
	Member(name string) (Value, bool)
}

// member resolves obj.name. Strings expose their rune length. Missing members
// are null.
func member(obj Value, name string) Value {
	if s, ok := Raw(obj).(String); ok && name == "length" {
		if _, annotated := obj.(*Annotated); !annotated {
			return Number(utf8.RuneCountInString(string(s)))
		}
	}

	if m, ok := obj.(memberer); ok {
		if v, ok := m.Member(name); ok {
			return v
		}
	}

	return Null{}
}

// index resolves obj[key]. Lists and strings take numeric indexes, anything
// else is looked up by the key's text.
func index(obj, key Value) Value {
	switch o := obj.(type) {
	case *List:
		if i, ok := intIndex(key, len(o.Elems)); ok {
			return o.Elems[i]
		}

		return Null{}

	case String:
		runes := []rune(string(o))
		if i, ok := intIndex(key, len(runes)); ok {
			return String(runes[i])
		}

		return Null{}
	}

	return member(obj, Raw(key).String())
}

func intIndex(key Value, n int) (int, bool) {
	num, ok := Raw(key).(Number)
	if !ok {
		return 0, false
	}

	f := float64(num)
	if f != math.Trunc(f) || f < 0 || f >= float64(n) {
		return 0, false
	}

	return int(f), true
}
