// Package options implements the option table changed by :set.
//
// Each option has a type that determines how its textual value is parsed and
// which :set operators apply to it. Options are looked up by any of their
// names; the first name is canonical.
package options

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"src.exline.sh/pkg/complete"
)

// Type is the type of an option.
type Type int

// Possible values of Type.
const (
	Boolean Type = iota
	Number
	String
	// StringList is a comma-separated list of strings.
	StringList
	// RegexpList is a comma-separated list of patterns, each optionally
	// negated with a leading "!".
	RegexpList
	// RegexpMap is a comma-separated list of "pattern=result" entries. An
	// entry without "=" is a result for all keys.
	RegexpMap
)

var typeNames = []string{"boolean", "number", "string", "stringlist", "regexplist", "regexpmap"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// IsList reports whether values of the type are comma-separated lists.
func (t Type) IsList() bool { return t >= StringList }

// Pattern is an entry of a RegexpList or RegexpMap value.
type Pattern struct {
	Source string
	Bang   bool
	Result string
	re     *regexp.Regexp
}

// Match reports whether the pattern matches key.
func (p Pattern) Match(key string) bool { return p.re.MatchString(key) }

func (p Pattern) String() string {
	s := p.Source
	if p.Bang {
		s = "!" + s
	}
	if p.Result != "" {
		s += "=" + p.Result
	}
	return s
}

// The pattern of map entries without an explicit pattern.
const anyKey = ".?"

func parsePattern(src, result string) (Pattern, error) {
	p := Pattern{Result: result}
	if strings.HasPrefix(src, "!") {
		p.Bang = true
		src = src[1:]
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return Pattern{}, err
	}
	p.Source, p.re = src, re
	return p, nil
}

// Option is an entry of the option table.
type Option struct {
	Names       []string
	Description string
	Type        Type
	// Default is the textual default value.
	Default string
	// Validator, when not nil, vetoes parsed values.
	Validator func(value any) bool
	// Values are offered when completing the value of the option.
	Values []complete.Item
	// CheckHas reports whether an element of a StringList value contains
	// key. When nil, Has compares elements for equality.
	CheckHas func(element, key string) bool

	value any
}

// Name returns the canonical name.
func (o *Option) Name() string { return o.Names[0] }

// HasName reports whether name is one of the names of the option.
func (o *Option) HasName(name string) bool {
	for _, n := range o.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Value returns the parsed value: an int, a bool, a string, a []string or a
// []Pattern depending on the type.
func (o *Option) Value() any { return o.value }

// Text returns the textual form of the current value.
func (o *Option) Text() string { return formatValue(o.value) }

// IsDefault reports whether the option has its default value.
func (o *Option) IsDefault() bool {
	def, err := o.parse(o.Default)
	return err == nil && formatValue(def) == o.Text()
}

// Set parses s and makes it the value of the option.
func (o *Option) Set(s string) error {
	v, err := o.parse(s)
	if err != nil {
		return err
	}
	if o.Validator != nil && !o.Validator(v) {
		return errInvalid(o.Name() + "=" + s)
	}
	o.value = v
	return nil
}

// Reset restores the default value.
func (o *Option) Reset() {
	v, err := o.parse(o.Default)
	if err != nil {
		panic(fmt.Sprintf("bad default for option %s: %v", o.Name(), err))
	}
	o.value = v
}

// Has reports whether a StringList value has an element matching key.
func (o *Option) Has(key string) bool {
	list, _ := o.value.([]string)
	for _, element := range list {
		if o.CheckHas != nil && o.CheckHas(element, key) || element == key {
			return true
		}
	}
	return false
}

// Lookup returns the result of the first pattern of a RegexpList or
// RegexpMap value that matches key. For a RegexpList, the result is "true",
// or "false" when the pattern is negated. The second return value is false
// when no pattern matches.
func (o *Option) Lookup(key string) (string, bool) {
	patterns, _ := o.value.([]Pattern)
	for _, p := range patterns {
		if !p.Match(key) {
			continue
		}
		if o.Type == RegexpList {
			return strconv.FormatBool(!p.Bang), true
		}
		return p.Result, true
	}
	return "", false
}

func (o *Option) parse(s string) (any, error) {
	switch o.Type {
	case Boolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errInvalid(o.Name() + "=" + s)
		}
		return b, nil
	case Number:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 0)
		if err != nil {
			return nil, fmt.Errorf("E521: Number required after =: %s=%s", o.Name(), s)
		}
		return int(n), nil
	case String:
		return s, nil
	}

	elements := splitList(s)
	if o.Type == StringList {
		return elements, nil
	}
	patterns := make([]Pattern, 0, len(elements))
	for _, element := range elements {
		src, result := element, ""
		if o.Type == RegexpMap {
			if i := strings.LastIndexByte(element, '='); i >= 0 {
				src, result = element[:i], element[i+1:]
			} else {
				src, result = anyKey, element
			}
		}
		p, err := parsePattern(src, result)
		if err != nil {
			return nil, fmt.Errorf("E475: Invalid argument: %s: %v", element, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func formatValue(v any) string {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []Pattern:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = p.String()
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

var errInvalidOperator = errors.New("E474: Invalid argument")

func errInvalid(arg string) error {
	return fmt.Errorf("E474: Invalid argument: %s", arg)
}

// Apply applies a :set operator to the option: "=" assigns, "+" adds (or
// appends), "-" removes (or subtracts) and "^" prepends (or multiplies).
// With invert, "=" toggles the given elements of a list.
func (o *Option) Apply(op string, value string, invert bool) error {
	var result string
	switch o.Type {
	case Boolean:
		return errInvalidOperator
	case Number:
		if op == "=" {
			return o.Set(value)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 0, 0)
		if err != nil {
			return fmt.Errorf("E521: Number required after =: %s=%s", o.Name(), value)
		}
		cur := o.value.(int)
		switch op {
		case "+":
			cur += int(n)
		case "-":
			cur -= int(n)
		case "^":
			cur *= int(n)
		}
		result = strconv.Itoa(cur)
	case String:
		cur := o.value.(string)
		switch op {
		case "=":
			result = value
		case "+":
			result = cur + value
		case "-":
			result = strings.Replace(cur, value, "", 1)
		case "^":
			result = value + cur
		}
	default:
		cur := splitList(o.Text())
		values := splitList(value)
		var list []string
		switch op {
		case "+":
			list = uniq(append(cur, values...))
		case "^":
			list = uniq(append(values, cur...))
		case "-":
			list = without(cur, values)
		case "=":
			if invert {
				list = append(without(values, cur), without(cur, values)...)
			} else {
				list = values
			}
		}
		result = strings.Join(list, ",")
	}
	return o.Set(result)
}

func uniq(list []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}

// Returns the elements of list that are not in remove.
func without(list, remove []string) []string {
	var result []string
outer:
	for _, s := range list {
		for _, r := range remove {
			if s == r {
				continue outer
			}
		}
		result = append(result, s)
	}
	return result
}
