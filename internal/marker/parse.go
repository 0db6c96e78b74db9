package marker

import (
	"go/ast"
	"strconv"
	"strings"
	"unicode"
)

var prefixes = []string{"//enum:", "//type:"}

// grammar describes the accepted arguments of one directive verb.
type grammar struct {
	kind       Kind
	positional []string        // keys bound to positional tokens, in order
	keys       map[string]bool // accepted keys; true marks a flag usable bare
}

var grammars = map[string]grammar{
	"enum:option": {
		kind:       KindEnumOption,
		positional: []string{"name"},
		keys:       map[string]bool{"name": false, "id": false, "category": false, "abstract": true},
	},
	"enum:collection": {
		kind:       KindEnumCollection,
		positional: []string{"name"},
		keys:       map[string]bool{"name": false, "returns": false, "singleton": true, "generic": true},
	},
	"enum:global": {
		kind:       KindEnumCollection,
		positional: []string{"name"},
		keys:       map[string]bool{"name": false, "returns": false, "singleton": true},
	},
	"enum:lookup": {
		kind:       KindEnumLookup,
		positional: []string{"method", "multi"},
		keys:       map[string]bool{"method": false, "multi": true, "returns": false, "fold": true},
	},
	"enum:extend": {
		kind:       KindExtendEnum,
		positional: []string{"name"},
		keys:       map[string]bool{"name": false},
	},
	"type:option": {
		kind:       KindTypeOption,
		positional: []string{"collection", "name"},
		keys:       map[string]bool{"collection": false, "name": false, "category": false, "abstract": true},
	},
	"type:collection": {
		kind:       KindTypeCollection,
		positional: []string{"base", "returns", "name"},
		keys:       map[string]bool{"base": false, "returns": false, "name": false},
	},
	"type:lookup": {
		kind:       KindTypeLookup,
		positional: []string{"method"},
		keys:       map[string]bool{"method": false, "multi": true, "fold": true},
	},
}

// IsDirective reports whether text is a collectiongen directive line.
func IsDirective(text string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// HasDirective reports whether the group contains at least one directive.
// It is the cheap pre-filter used before any type information is consulted.
func HasDirective(cg *ast.CommentGroup) bool {
	if cg == nil {
		return false
	}
	for _, c := range cg.List {
		if IsDirective(c.Text) {
			return true
		}
	}
	return false
}

// ParseGroup parses every directive of a comment group. Malformed
// directives are returned as errors and do not produce a Marker.
func ParseGroup(cg *ast.CommentGroup) ([]Marker, []*Error) {
	if cg == nil {
		return nil, nil
	}
	var (
		out  []Marker
		errs []*Error
	)
	for _, c := range cg.List {
		m, err := ParseComment(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if m != nil {
			out = append(out, m)
		}
	}
	return out, errs
}

// ParseComment parses one comment. It returns nil, nil when the comment is
// not a directive.
func ParseComment(c *ast.Comment) (Marker, *Error) {
	if c == nil || !IsDirective(c.Text) {
		return nil, nil
	}
	body := strings.TrimPrefix(c.Text, "//")
	head, rest, _ := strings.Cut(body, " ")
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, rest = head[:i], head[i:]+" "+rest
	}
	sp, ok := grammars[head]
	if !ok {
		return nil, &Error{Comment: c, Msg: "unknown directive " + strconv.Quote(head)}
	}
	prefix, verb, _ := strings.Cut(head, ":")

	args, msg := tokenize(rest, len("//")+len(head)+1)
	if msg != "" {
		return nil, &Error{Comment: c, Msg: msg}
	}
	d := &Directive{Comment: c, Prefix: prefix, Verb: verb, Args: args}

	vals, msg := bind(sp, args)
	if msg != "" {
		return nil, &Error{Comment: c, Msg: msg}
	}
	m, msg := build(head, sp.kind, d, vals)
	if msg != "" {
		return nil, &Error{Comment: c, Msg: msg}
	}
	return m, nil
}

// tokenize splits the argument part of a directive. base is the offset of
// s within the comment text.
func tokenize(s string, base int) ([]Arg, string) {
	var (
		args []Arg
		i    int
	)
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		var key string
		// key=value or bare token
		j := i
		for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '=' && s[j] != '"' {
			j++
		}
		if j < len(s) && s[j] == '=' {
			key = s[i:j]
			if key == "" {
				return nil, "missing key before '='"
			}
			i = j + 1
		}
		var val string
		if i < len(s) && s[i] == '"' {
			end := i + 1
			for end < len(s) && s[end] != '"' {
				if s[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(s) {
				return nil, "unterminated quoted value"
			}
			uq, err := strconv.Unquote(s[i : end+1])
			if err != nil {
				return nil, "invalid quoted value " + s[i:end+1]
			}
			val = uq
			i = end + 1
		} else {
			end := i
			for end < len(s) && s[end] != ' ' && s[end] != '\t' {
				end++
			}
			val = s[i:end]
			i = end
		}
		if key != "" && val == "" {
			return nil, "missing value for " + strconv.Quote(key)
		}
		args = append(args, Arg{Key: key, Value: val, Offset: base + start, End: base + i})
	}
	return args, ""
}

// bind maps tokens onto the verb's keys. Bare flags become "true".
func bind(sp grammar, args []Arg) (map[string]string, string) {
	vals := make(map[string]string, len(args))
	pos := 0
	for _, a := range args {
		key := a.Key
		val := a.Value
		if key == "" {
			if flag, known := sp.keys[val]; known && flag {
				key, val = val, "true"
			} else {
				if pos >= len(sp.positional) {
					return nil, "unexpected argument " + strconv.Quote(a.Value)
				}
				key = sp.positional[pos]
				pos++
			}
		}
		if _, ok := sp.keys[key]; !ok {
			return nil, "unknown argument " + strconv.Quote(key)
		}
		if _, dup := vals[key]; dup {
			return nil, "duplicate argument " + strconv.Quote(key)
		}
		vals[key] = val
	}
	return vals, ""
}

func build(head string, kind Kind, d *Directive, vals map[string]string) (Marker, string) {
	var msg string
	boolVal := func(key string, def bool) bool {
		v, ok := vals[key]
		if !ok {
			return def
		}
		b, err := strconv.ParseBool(v)
		if err != nil && msg == "" {
			msg = "invalid boolean for " + strconv.Quote(key) + ": " + strconv.Quote(v)
		}
		return b
	}

	switch kind {
	case KindEnumOption:
		m := &EnumOption{
			Directive: d,
			Name:      vals["name"],
			Category:  vals["category"],
			Abstract:  boolVal("abstract", false),
		}
		if v, ok := vals["id"]; ok {
			id, err := strconv.Atoi(v)
			if err != nil {
				return nil, "invalid id " + strconv.Quote(v)
			}
			m.ID, m.HasID = id, true
		}
		return m, msg
	case KindEnumCollection:
		m := &EnumCollection{
			Directive: d,
			Name:      vals["name"],
			Returns:   vals["returns"],
			Singleton: boolVal("singleton", true),
			Generic:   boolVal("generic", false),
			Global:    head == "enum:global",
		}
		return m, msg
	case KindEnumLookup:
		m := &EnumLookup{
			Directive: d,
			Method:    vals["method"],
			Multi:     boolVal("multi", false),
			Returns:   vals["returns"],
			Fold:      boolVal("fold", false),
		}
		if m.Method == "" {
			return nil, "lookup requires a method name"
		}
		return m, msg
	case KindExtendEnum:
		return &ExtendEnum{Directive: d, Name: vals["name"]}, msg
	case KindTypeOption:
		m := &TypeOption{
			Directive:  d,
			Collection: vals["collection"],
			Name:       vals["name"],
			Category:   vals["category"],
			Abstract:   boolVal("abstract", false),
		}
		return m, msg
	case KindTypeCollection:
		m := &TypeCollection{
			Directive: d,
			Base:      vals["base"],
			Returns:   vals["returns"],
			Name:      vals["name"],
		}
		return m, msg
	case KindTypeLookup:
		m := &TypeLookup{
			Directive: d,
			Method:    vals["method"],
			Multi:     boolVal("multi", false),
			Fold:      boolVal("fold", false),
		}
		if m.Method == "" {
			return nil, "lookup requires a method name"
		}
		return m, msg
	}
	return nil, "unsupported directive"
}
