package eval

import (
	"errors"
	"strings"

	"src.exline.sh/pkg/diag"
	"src.exline.sh/pkg/parse"
)

// CheckErrorType is the type of the errors returned by Check for problems
// that are not argument parse errors.
const CheckErrorType = "check error"

// Check parses every command of an Ex script without executing any of them,
// and returns the problems found. Ranges are byte offsets in code, with line
// endings normalized to "\n". A range within a continued line is clamped to
// the first physical line.
func (ev *Evaler) Check(name, code string) []*diag.Error {
	code = strings.ReplaceAll(strings.ReplaceAll(code, "\r\n", "\n"), "\r", "\n")
	fm := ev.newFrame(Source{Name: name, Code: code}, code, Quiet)
	starts := make([]int, len(fm.lines)+1)
	for i, line := range fm.lines {
		starts[i+1] = starts[i] + len(line) + 1
	}

	var errs []*diag.Error
	for {
		first := fm.next
		logical, ok := fm.nextLine()
		if !ok {
			break
		}
		lineStart := starts[first]
		lineEnd := lineStart + len(fm.lines[first])
		clamp := func(p int) int {
			if p > lineEnd {
				return lineEnd
			}
			return p
		}
		line := logical
		for {
			pos := lineStart + len(logical) - len(line)
			c, err := fm.parseCall(line)
			if err != nil {
				r := diag.Ranging{From: clamp(pos), To: lineEnd}
				var derr *diag.Error
				typ := CheckErrorType
				if errors.As(err, &derr) {
					inv, _ := parse.ParseCommand(line)
					r = derr.Range().Shift(pos + inv.ArgsOffset)
					r = diag.Ranging{From: clamp(r.From), To: clamp(r.To)}
					typ, err = derr.Type, errors.New(derr.Message)
				}
				errs = append(errs, &diag.Error{
					Type:    typ,
					Message: err.Error(),
					Context: *diag.NewContext(name, code, r),
				})
				break
			}
			if c == nil || !c.Args.HasTrailing {
				break
			}
			line = c.Args.Trailing
		}
	}
	return errs
}
