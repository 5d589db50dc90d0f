package getopt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/diag"
	"src.exline.sh/pkg/parse"
)

// Parse parses an argument string. It returns an error for the first problem
// found, or when the number of positional arguments violates the argument
// count policy. Errors are *diag.Error values ranging over str.
func Parse(str string, spec *Spec) (*Args, error) {
	p := newParser(str, spec, nil)
	p.run()
	if len(p.args.Diagnostics) > 0 {
		d := p.args.Diagnostics[0]
		return p.args, p.args.error(d.Message, d.Ranging)
	}
	if err := p.args.Verify(); err != nil {
		return p.args, err
	}
	return p.args, nil
}

// ParseComplete parses an argument string for completion in the context c,
// whose filter must be str. It never fails: problems are recorded in
// Args.Diagnostics and highlighted in c. When the cursor is at the value of an
// option, a sub-context named after the option is forked and populated from
// its completer. The context c itself is advanced to the argument under the
// cursor and populated with the options that may still be given.
func ParseComplete(str string, spec *Spec, c *complete.Context) *Args {
	p := newParser(str, spec, c)
	p.run()
	p.finishCompletion()
	return p.args
}

type parser struct {
	str  string
	spec *Spec
	ctx  *complete.Context
	args *Args

	i            int
	onlyArgs     bool
	completeOpts []*OptionSpec
}

func newParser(str string, spec *Spec, c *complete.Context) *parser {
	if spec == nil {
		spec = &Spec{Literal: NoLiteral}
	}
	return &parser{
		str:      str,
		spec:     spec,
		ctx:      c,
		args:     newArgs(str, spec),
		onlyArgs: spec.AllowUnknownOptions || len(spec.Options) == 0,
	}
}

// Separates tokens outside quotes.
func isSeparator(r rune) bool { return unicode.IsSpace(r) || r == '|' }

var doubleDash = regexp.MustCompile(`^--(\s|$)`)

func (p *parser) completing() bool { return p.ctx != nil }

// Records a problem. In completion mode it also becomes the message of the
// context, and parsing goes on; otherwise parsing stops.
func (p *parser) fail(msg string, from, to int) bool {
	p.args.Diagnostics = append(p.args.Diagnostics, Diagnostic{msg, diag.Ranging{From: from, To: to}})
	if p.completing() {
		p.ctx.SetMessage(msg)
		return false
	}
	return true
}

func (p *parser) highlight(from, to int) {
	if p.completing() {
		p.ctx.Highlight(from, to-from, complete.HighlightSpellCheck)
	}
}

func (p *parser) resetCompletions() {
	p.completeOpts = nil
	p.args.CompleteOpt = nil
	p.args.CompleteFilter = ""
	p.args.CompleteStart = p.i
	p.args.Quote = parse.QuotingFor(parse.NoQuote)
}

// Offers the options that may still be given.
func (p *parser) matchOpts() {
	if !p.completing() || p.onlyArgs {
		return
	}
	p.completeOpts = nil
	for _, opt := range p.spec.Options {
		if opt.Multiple || !p.args.Has(opt.Name()) {
			p.completeOpts = append(p.completeOpts, opt)
		}
	}
}

// Checks the open quote returned by parse.ParseArg.
func (p *parser) checkQuote(open string, from int) bool {
	if p.completing() {
		return false
	}
	switch open {
	case parse.NoQuote:
		return false
	case parse.TrailingBackslash:
		return p.fail(`Trailing \`, len(p.str)-1, len(p.str))
	default:
		return p.fail("E114: Missing quote: "+open, from, len(p.str))
	}
}

func (p *parser) run() {
	str, args := p.str, p.args
	if p.completing() {
		p.resetCompletions()
		p.matchOpts()
		args.CompleteArg = 0
	}

	for p.i < len(str) || p.completing() {
		p.i = len(str) - len(strings.TrimLeftFunc(str[p.i:], unicode.IsSpace))
		if p.i == len(str) && !p.completing() {
			break
		}
		if p.completing() {
			p.resetCompletions()
		}
		sub := str[p.i:]
		atLiteral := len(args.Positional) == p.spec.Literal

		if !atLiteral && strings.HasPrefix(sub, "|") {
			args.Trailing, args.HasTrailing = sub[1:], true
			break
		}
		if !p.onlyArgs && !atLiteral && doubleDash.MatchString(sub) {
			p.onlyArgs = true
			p.i += 2
			continue
		}
		if !p.onlyArgs && !atLiteral {
			consumed, stop, ok := p.parseOption(sub)
			if stop {
				return
			}
			if ok {
				p.i += consumed
				if p.i == len(str) {
					break
				}
				continue
			}
		}

		p.matchOpts()
		if p.completing() {
			argCount := p.spec.argCount()
			if argCount == "0" || len(args.Positional) > 0 && strings.ContainsAny(argCount, "1?") {
				p.highlight(p.i, len(str))
			}
		}

		if atLiteral {
			if p.completing() {
				args.CompleteArg = len(args.Positional)
			}
			if !p.readLiteral(sub) {
				return
			}
			break
		}

		n, arg, open := parse.ParseArg(sub, isSeparator, false)
		if p.checkQuote(open, p.i) {
			return
		}
		if p.completing() {
			args.Quote = parse.QuotingFor(open)
			args.CompleteFilter = arg
		} else if !p.onlyArgs && strings.HasPrefix(sub, "-") {
			if p.fail("Invalid option: "+arg, p.i, p.i+n) {
				return
			}
		}
		if n == 0 && !p.completing() {
			r, size := utf8.DecodeRuneInString(sub)
			p.fail("E488: Trailing characters: "+string(r), p.i, p.i+size)
			return
		}
		if n > 0 || p.completing() {
			args.Positional = append(args.Positional, arg)
		}
		if p.completing() {
			args.CompleteArg = len(args.Positional) - 1
		}
		p.i += n
		if n <= 0 || p.i == len(str) {
			break
		}
	}
}

var heredocPattern = regexp.MustCompile(`(?s)^(.*?)<<\s*(\S+)\s*$`)

func (p *parser) readLiteral(sub string) bool {
	args := p.args
	lit := sub
	if p.spec.HereDoc && !p.completing() && p.spec.ReadHeredoc != nil {
		if m := heredocPattern.FindStringSubmatch(sub); m != nil {
			body, err := p.spec.ReadHeredoc(m[2])
			if err != nil {
				return !p.fail(err.Error(), p.i, len(p.str))
			}
			// The body starts a new line after the text before "<<". Like any
			// literal, it starts at the first non-blank character.
			lit = strings.TrimLeftFunc(m[1]+"\n"+body, unicode.IsSpace)
		}
	}
	args.Literal, args.HasLiteral = lit, true
	args.Positional = append(args.Positional, lit)
	args.Quote = parse.Quoting{}
	if p.completing() {
		args.CompleteFilter = lit
	}
	return true
}

// Finds the longest option name at the start of sub.
func (p *parser) findOption(sub string) (*OptionSpec, string) {
	var found *OptionSpec
	var foundName string
	for _, opt := range p.spec.Options {
		for _, name := range opt.Names {
			if len(name) > len(foundName) && strings.HasPrefix(sub, name) {
				rest := sub[len(name):]
				if r, _ := utf8.DecodeRuneInString(rest); rest == "" || r == '=' || isSeparator(r) {
					found, foundName = opt, name
				}
			}
		}
	}
	return found, foundName
}

// Parses an option at the start of sub. It returns the number of bytes
// consumed, whether parsing must stop, and whether an option was found.
func (p *parser) parseOption(sub string) (int, bool, bool) {
	opt, name := p.findOption(sub)
	if opt == nil {
		return 0, false, false
	}
	args := p.args
	rest := sub[len(name):]
	var (
		raw     string
		present bool
		open    string
		// Bytes consumed after the name.
		count     int
		valueFrom = p.i + len(name)
	)
	switch {
	case strings.HasPrefix(rest, "="):
		var n int
		n, raw, open = parse.ParseArg(rest[1:], isSeparator, false)
		present = true
		count = 1 + n
		valueFrom++
	case startsWithSpace(rest) && opt.Type != NoArg:
		ws := len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))
		var n int
		n, raw, open = parse.ParseArg(rest[ws:], isSeparator, false)
		// A value after whitespace must be non-empty or quoted.
		present = n > 0 && (raw != "" || open != parse.NoQuote || rest[ws] == '"' || rest[ws] == '\'')
		if present || p.completing() && ws+n == len(rest) {
			count = ws + n
			valueFrom += ws
		}
	default:
		p.matchOpts()
	}
	valueTo := p.i + len(name) + count
	if p.checkQuote(open, valueFrom) {
		return 0, true, true
	}

	if p.completing() && count > 0 {
		args.CompleteStart = valueFrom
		args.CompleteOpt = opt
		args.CompleteFilter = raw
		args.Quote = parse.QuotingFor(open)
	}
	var value any
	if !p.completing() || present {
		// The value under the cursor is still being typed.
		atEnd := p.completing() && valueTo == len(p.str)
		v, ok := opt.Type.parse(raw, present)
		switch {
		case !ok:
			if !atEnd {
				if p.fail("Invalid argument for "+opt.Type.String()+" option: "+name, valueFrom, valueTo) {
					return 0, true, true
				}
				p.highlight(valueFrom, valueTo)
			}
		case opt.Validator != nil && !opt.Validator(v):
			if !atEnd {
				if p.fail("Invalid argument for option: "+name, valueFrom, valueTo) {
					return 0, true, true
				}
				p.highlight(valueFrom, valueTo)
			}
		}
		value = v
	}
	if opt.Type == NoArg {
		value = true
	}
	args.addOption(opt, value)
	return len(name) + count, false, true
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && unicode.IsSpace(r)
}

func (p *parser) finishCompletion() {
	c, args := p.ctx, p.args
	if opt := args.CompleteOpt; opt != nil {
		sub := c.Fork(opt.Name(), args.CompleteStart, nil)
		sub.SetFilter(args.CompleteFilter)
		sub.Title = opt.Name()
		q := args.Quote
		sub.Quote = &q
		if opt.Completer != nil {
			if err := opt.Completer(sub, args); err != nil {
				sub.SetMessage(err.Error())
			}
		} else if opt.Values != nil {
			sub.SetCompletions(opt.Values)
		}
	}
	c.Advance(args.CompleteStart)
	c.Title = "Options"
	if p.completeOpts != nil {
		items := make([]complete.Item, len(p.completeOpts))
		for i, opt := range p.completeOpts {
			name := opt.Name()
			for _, n := range opt.Names {
				if c.Match(n) {
					name = n
					break
				}
			}
			items[i] = complete.Item{Text: name, Description: opt.Description}
		}
		c.SetCompletions(items)
	}
}
