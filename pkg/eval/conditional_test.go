package eval

import (
	"testing"

	"src.exline.sh/pkg/tt"
)

func TestEvalCondition(t *testing.T) {
	tt.Test(t, tt.Fn("EvalCondition", EvalCondition), tt.Table{
		tt.Args("1").Rets(true, nil),
		tt.Args("0").Rets(false, nil),
		tt.Args("!0").Rets(true, nil),
		tt.Args("! yes").Rets(false, nil),
		tt.Args("off").Rets(false, nil),
		tt.Args(`""`).Rets(false, nil),
		tt.Args("a == a").Rets(true, nil),
		tt.Args("a != a").Rets(false, nil),
		tt.Args(`"x y" == 'x y'`).Rets(true, nil),
		tt.Args("abc =~ ^a").Rets(true, nil),
		tt.Args("abc !~ ^a").Rets(false, nil),
		tt.Args("a =~ (").Rets(false, tt.Any),
		tt.Args("a b").Rets(false, tt.Any),
		tt.Args(`"open`).Rets(false, tt.Any),
		tt.Args("").Rets(false, tt.Any),
	})
}

func TestConditionals(t *testing.T) {
	ev, rec := setup()
	ev.Execute(Source{Name: "rc", Code: `
if 1
  echo yes
else
  echo no
endif
if "a" == "b"
  echo bad
elseif a != b
  echo good
elif 1
  echo late
endif
if 0
  Nope
  if 1
    echo inner
  else
    echo inner else
  endif
else
  echo outer else
fi
`}, ExecCfg{})
	wantOutput(t, rec, "yes", "good", "outer else")
}

func TestConditionals_Errors(t *testing.T) {
	ev, rec := setup()
	ev.Execute(Source{Code: "endif\nelse\nelseif 1"}, ExecCfg{})
	wantOutput(t, rec,
		"E580: :endif without :if",
		"E581: :else without :if",
		"E582: :elseif without :if",
	)

	rec.ms = nil
	ev.Execute(Source{Code: "if 1\nelse\nelse\nelseif 1\nendif"}, ExecCfg{})
	wantOutput(t, rec, "E583: multiple :else", "E584: :elseif after :else")

	rec.ms = nil
	ev.Execute(Source{Code: "if 1\necho in"}, ExecCfg{})
	wantOutput(t, rec, "in", "E171: Missing :endif")

	rec.ms = nil
	ev.Execute(Source{Code: "if a b\necho skipped\nelse\necho also skipped\nendif"}, ExecCfg{})
	wantOutput(t, rec, "E15: Invalid expression: a b")
}
