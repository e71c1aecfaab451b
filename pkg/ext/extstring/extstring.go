// Package extstring provides string functions for gamescript. Strings are
// arrays of chars in scripts and reach these functions as host strings.
// Register them via evaluator.WithForeignFunctions or the top-level
// ext.WithString() helper.
package extstring

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extutil"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

// All returns all extended string function definitions.
func All() []functions.ForeignFunctionDef {
	return []functions.ForeignFunctionDef{
		Upper(),
		Lower(),
		Trim(),
		Split(),
		Join(),
		Contains(),
		StartsWith(),
		EndsWith(),
		IndexOf(),
		Capitalize(),
		SnakeCase(),
		Repeat(),
		Words(),
		Template(),
	}
}

// Upper returns the definition for (upper s).
func Upper() functions.ForeignFunctionDef {
	return mapString("upper", strings.ToUpper)
}

// Lower returns the definition for (lower s).
func Lower() functions.ForeignFunctionDef {
	return mapString("lower", strings.ToLower)
}

// Trim returns the definition for (trim s), removing surrounding whitespace.
func Trim() functions.ForeignFunctionDef {
	return mapString("trim", strings.TrimSpace)
}

// Split returns the definition for (split s sep). An empty separator splits
// into single-character strings.
func Split() functions.ForeignFunctionDef {
	return extutil.Def("split", 2, func(args []functions.Value) (functions.Value, error) {
		str, sep, err := twoStrings(args)
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Strings(strings.Split(str, sep)...), nil
	})
}

// Join returns the definition for (join parts sep).
func Join() functions.ForeignFunctionDef {
	return extutil.Def("join", 2, func(args []functions.Value) (functions.Value, error) {
		parts, err := extutil.Texts(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		sep, err := extutil.Text(args[1])
		if err != nil {
			return functions.Value{}, err
		}
		return functions.String(strings.Join(parts, sep)), nil
	})
}

// Contains returns the definition for (contains? s sub).
func Contains() functions.ForeignFunctionDef {
	return predicate("contains?", strings.Contains)
}

// StartsWith returns the definition for (starts-with? s prefix).
func StartsWith() functions.ForeignFunctionDef {
	return predicate("starts-with?", strings.HasPrefix)
}

// EndsWith returns the definition for (ends-with? s suffix).
func EndsWith() functions.ForeignFunctionDef {
	return predicate("ends-with?", strings.HasSuffix)
}

// IndexOf returns the definition for (index-of s search): the char index of
// the first occurrence, or -1.
func IndexOf() functions.ForeignFunctionDef {
	return extutil.Def("index-of", 2, func(args []functions.Value) (functions.Value, error) {
		str, search, err := twoStrings(args)
		if err != nil {
			return functions.Value{}, err
		}
		idx := strings.Index(str, search)
		if idx < 0 {
			return functions.Int(-1), nil
		}
		return functions.Int(int64(utf8.RuneCountInString(str[:idx]))), nil
	})
}

// Capitalize returns the definition for (capitalize s).
// Uppercases the first character, lowercases the rest.
func Capitalize() functions.ForeignFunctionDef {
	return mapString("capitalize", func(str string) string {
		if str == "" {
			return str
		}
		runes := []rune(strings.ToLower(str))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
}

var splitWordsRe = regexp.MustCompile(`[_\-\s]+|([a-z])([A-Z])`)

// splitIntoWords splits camelCase, snake_case, kebab-case and spaced text.
func splitIntoWords(str string) []string {
	expanded := splitWordsRe.ReplaceAllStringFunc(str, func(s string) string {
		if len(s) == 2 && s[0] >= 'a' && s[0] <= 'z' {
			return string(s[0]) + " " + string(s[1])
		}
		return " "
	})
	return strings.Fields(expanded)
}

// SnakeCase returns the definition for (snake-case s).
func SnakeCase() functions.ForeignFunctionDef {
	return mapString("snake-case", func(str string) string {
		words := splitIntoWords(str)
		for i, w := range words {
			words[i] = strings.ToLower(w)
		}
		return strings.Join(words, "_")
	})
}

// Repeat returns the definition for (repeat s n).
func Repeat() functions.ForeignFunctionDef {
	return extutil.Def("repeat", 2, func(args []functions.Value) (functions.Value, error) {
		str, err := extutil.Text(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		n, err := extutil.Int(args[1])
		if err != nil || n < 0 {
			return functions.Value{}, fmt.Errorf("count must be a non-negative int")
		}
		return functions.String(strings.Repeat(str, int(n))), nil
	})
}

// Words returns the definition for (words s), splitting on whitespace.
func Words() functions.ForeignFunctionDef {
	return extutil.Def("words", 1, func(args []functions.Value) (functions.Value, error) {
		str, err := extutil.Text(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Strings(strings.Fields(str)...), nil
	})
}

var templateRe = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Template returns the definition for (template s bindings). Bindings are an
// array of {key value} tuples; {{key}} placeholders are replaced with the
// value, strings and chars raw and everything else in script notation.
// Unknown placeholders are left as they are.
func Template() functions.ForeignFunctionDef {
	return extutil.Def("template", 2, func(args []functions.Value) (functions.Value, error) {
		tmpl, err := extutil.Text(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		pairs, err := extutil.Items(args[1])
		if err != nil {
			return functions.Value{}, err
		}
		bindings := make(map[string]string, len(pairs))
		for i, p := range pairs {
			if p.Kind != functions.KindTuple || len(p.Items) != 2 {
				return functions.Value{}, fmt.Errorf("binding %d must be a {key value} tuple", i)
			}
			key, err := extutil.Text(p.Items[0])
			if err != nil {
				return functions.Value{}, fmt.Errorf("binding %d: %w", i, err)
			}
			bindings[key] = display(p.Items[1])
		}
		out := templateRe.ReplaceAllStringFunc(tmpl, func(match string) string {
			if val, ok := bindings[match[2:len(match)-2]]; ok {
				return val
			}
			return match
		})
		return functions.String(out), nil
	})
}

func display(v functions.Value) string {
	switch v.Kind {
	case functions.KindString:
		return v.Str
	case functions.KindChar:
		return string(v.Char)
	}
	return v.String()
}

func twoStrings(args []functions.Value) (string, string, error) {
	a, err := extutil.Text(args[0])
	if err != nil {
		return "", "", err
	}
	b, err := extutil.Text(args[1])
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func mapString(name string, fn func(string) string) functions.ForeignFunctionDef {
	return extutil.Def(name, 1, func(args []functions.Value) (functions.Value, error) {
		str, err := extutil.Text(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		return functions.String(fn(str)), nil
	})
}

func predicate(name string, fn func(s, sub string) bool) functions.ForeignFunctionDef {
	return extutil.Def(name, 2, func(args []functions.Value) (functions.Value, error) {
		str, sub, err := twoStrings(args)
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Bool(fn(str, sub)), nil
	})
}
