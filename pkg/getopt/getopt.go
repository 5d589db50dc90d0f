// Package getopt implements the option and argument grammar of Ex commands.
//
// An argument string such as
//
//	-nargs=1 -complete=command Foo echo <args>
//
// is parsed against a Spec into an Args value holding the option values, the
// positional arguments and the literal argument. When given a completion
// context, the parser never fails; instead it records where the argument under
// the cursor starts, which option (if any) is being completed and the spans
// that are invalid, so that candidates can be offered for malformed input.
package getopt

import (
	"fmt"
	"strconv"
	"strings"

	"src.exline.sh/pkg/complete"
)

// Type is the value type of an option.
type Type int

// Possible values of Type.
const (
	// The option takes no value.
	NoArg Type = iota
	// Any value is accepted, as a string.
	Any
	// Boolean values: true, 1, on, false, 0, off.
	Bool
	String
	Int
	Float
	// Comma-separated list of strings.
	List
)

var typeNames = []string{"no arg", "any", "boolean", "string", "int", "float", "list"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Converts the raw value of an option. The raw value is absent when the
// option was given without "=" and without a following argument.
func (t Type) parse(raw string, present bool) (any, bool) {
	switch t {
	case NoArg:
		return true, !present || raw == ""
	case Any:
		if !present {
			return nil, true
		}
		return raw, true
	case Bool:
		switch strings.ToLower(raw) {
		case "true", "1", "on":
			return true, true
		case "false", "0", "off":
			return false, true
		}
		return nil, false
	case String:
		return raw, present
	case Int:
		n, err := strconv.Atoi(raw)
		return n, err == nil
	case Float:
		f, err := strconv.ParseFloat(raw, 64)
		return f, err == nil
	case List:
		if !present {
			return nil, false
		}
		if strings.TrimSpace(raw) == "" {
			return []string{}, true
		}
		fields := strings.Split(raw, ",")
		for i, field := range fields {
			fields[i] = strings.TrimSpace(field)
		}
		return fields, true
	}
	return nil, false
}

// OptionSpec declares an option of a command.
type OptionSpec struct {
	// Names of the option, including the leading "-". The first one is the
	// canonical name.
	Names []string
	Type  Type
	// Validator, when not nil, may veto a converted value.
	Validator func(value any) bool
	// Completer populates the context of the option value. Values is used
	// instead when Completer is nil.
	Completer func(c *complete.Context, args *Args) error
	Values    []complete.Item
	// Multiple allows the option to be given more than once; its value is
	// then a []any of all values.
	Multiple    bool
	Description string
	// Default is returned by the accessors of Args when the option is not
	// given. It is never stored in Args.
	Default any
}

// Name returns the canonical name of the option.
func (o *OptionSpec) Name() string { return o.Names[0] }

// NoLiteral is the value of Spec.Literal for commands without a literal
// argument.
const NoLiteral = -1

// Spec describes the arguments accepted by a command.
type Spec struct {
	Options []*OptionSpec
	// ArgCount is one of "0", "1", "?", "*" and "+". The empty string is
	// treated as "*".
	ArgCount string
	// AllowUnknownOptions makes tokens starting with "-" positional.
	AllowUnknownOptions bool
	// Literal is the index of the positional argument that takes the rest of
	// the string verbatim, or NoLiteral.
	Literal int
	// HereDoc enables "<<MARKER" at the end of the literal argument, in which
	// case the body is fetched with ReadHeredoc.
	HereDoc     bool
	ReadHeredoc func(marker string) (string, error)
}

func (s *Spec) argCount() string {
	if s.ArgCount == "" {
		return "*"
	}
	return s.ArgCount
}

// Option finds the option with the given name, which may be any of its names.
func (s *Spec) Option(name string) *OptionSpec {
	for _, opt := range s.Options {
		for _, n := range opt.Names {
			if n == name {
				return opt
			}
		}
	}
	return nil
}

// ValidArgCount reports whether s is a valid argument count policy.
func ValidArgCount(s string) bool {
	return len(s) == 1 && strings.Contains("01?*+", s)
}
