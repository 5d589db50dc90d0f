package eval

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/parse"
)

// State of one :if block.
type cond struct {
	// Whether the enclosing code is executed.
	outer bool
	// Whether the current branch is executed.
	active bool
	// Whether some branch has been executed.
	taken   bool
	sawElse bool
}

func (fm *Frame) noExecute() bool {
	conds := fm.state.conds
	return len(conds) > 0 && !conds[len(conds)-1].active
}

func (fm *Frame) topCond() *cond {
	conds := fm.state.conds
	if len(conds) == 0 {
		return nil
	}
	return conds[len(conds)-1]
}

func init() {
	addBuiltinInstaller(func(ev *Evaler) {
		extra := Extra{ArgCount: "*", Literal: 0, HasLiteral: true, PrivateData: NoPrivateData}
		ifExtra := extra
		ifExtra.Always = cmdIf
		elseIfExtra := extra
		elseIfExtra.Always = cmdElseIf
		elseExtra := Extra{ArgCount: "0", PrivateData: NoPrivateData, Always: cmdElse}
		endIfExtra := Extra{ArgCount: "0", PrivateData: NoPrivateData, Always: cmdEndIf}

		ev.mustAdd([]string{"if"}, "Execute commands conditionally", cmdIf, ifExtra)
		ev.mustAdd([]string{"elsei[f]", "elif"}, "Execute commands conditionally", cmdElseIf, elseIfExtra)
		ev.mustAdd([]string{"el[se]"}, "Execute commands conditionally", cmdElse, elseExtra)
		ev.mustAdd([]string{"en[dif]", "fi"}, "End a string of :if/:elseif/:else conditionals", cmdEndIf, endIfExtra)
	})
}

func cmdIf(fm *Frame, args *getopt.Args) error {
	c := &cond{outer: !fm.noExecute()}
	fm.state.conds = append(fm.state.conds, c)
	if !c.outer {
		return nil
	}
	v, err := EvalCondition(args.Literal)
	// A failed condition is false and prevents the other branches.
	c.active, c.taken = v, v || err != nil
	return err
}

func cmdElseIf(fm *Frame, args *getopt.Args) error {
	c := fm.topCond()
	switch {
	case c == nil:
		return errors.New("E582: :elseif without :if")
	case c.sawElse:
		c.active = false
		return errors.New("E584: :elseif after :else")
	case !c.outer || c.taken:
		c.active = false
		return nil
	}
	v, err := EvalCondition(args.Literal)
	c.active, c.taken = v, v || err != nil
	return err
}

func cmdElse(fm *Frame, args *getopt.Args) error {
	c := fm.topCond()
	switch {
	case c == nil:
		return errors.New("E581: :else without :if")
	case c.sawElse:
		c.active = false
		return errors.New("E583: multiple :else")
	}
	c.sawElse = true
	c.active = c.outer && !c.taken
	c.taken = true
	return nil
}

func cmdEndIf(fm *Frame, args *getopt.Args) error {
	conds := fm.state.conds
	if len(conds) == 0 {
		return errors.New("E580: :endif without :if")
	}
	fm.state.conds = conds[:len(conds)-1]
	return nil
}

// Truthy reports whether a condition operand is true. The empty string, "0",
// "false" and "off" are false.
func Truthy(s string) bool {
	switch strings.ToLower(s) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// EvalCondition evaluates the expression of :if and :elseif. Operands are
// arguments in any quoting dialect. Supported forms are "A", "!A", "A == B",
// "A != B", "A =~ RE" and "A !~ RE".
func EvalCondition(expr string) (bool, error) {
	trimmed := strings.TrimSpace(expr)
	negate := strings.HasPrefix(trimmed, "!")
	if negate {
		trimmed = trimmed[1:]
	}
	var operands []string
	for rest := trimmed; ; {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		n, arg, open := parse.ParseArg(rest, nil, false)
		if open != parse.NoQuote || n == 0 {
			return false, fmt.Errorf("E15: Invalid expression: %s", expr)
		}
		operands = append(operands, arg)
		rest = rest[n:]
	}

	switch {
	case len(operands) == 1:
		return Truthy(operands[0]) != negate, nil
	case len(operands) == 3 && !negate:
		a, op, b := operands[0], operands[1], operands[2]
		switch op {
		case "==":
			return a == b, nil
		case "!=":
			return a != b, nil
		case "=~", "!~":
			re, err := regexp.Compile(b)
			if err != nil {
				return false, fmt.Errorf("E383: Invalid search string: %s", b)
			}
			return re.MatchString(a) == (op == "=~"), nil
		}
	}
	return false, fmt.Errorf("E15: Invalid expression: %s", expr)
}
