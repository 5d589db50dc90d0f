package parse

import (
	"testing"

	"src.exline.sh/pkg/tt"
)

func TestParseCommand(t *testing.T) {
	tt.Test(t, tt.Fn("ParseCommand", ParseCommand), tt.Table{
		tt.Args(":2foo! bar").Rets(Invocation{2, "foo", true, "bar", 7}, true),
		tt.Args("echo hi").Rets(Invocation{CountNone, "echo", false, "hi", 5}, true),
		tt.Args("  :: com | echo 1").Rets(Invocation{CountNone, "com", false, "| echo 1", 9}, true),
		tt.Args("com|echo").Rets(Invocation{CountNone, "com", false, "|echo", 3}, true),
		tt.Args("%yank x").Rets(Invocation{CountAll, "yank", false, "x", 6}, true),
		tt.Args("e!").Rets(Invocation{CountNone, "e", true, "", 2}, true),
		tt.Args("se").Rets(Invocation{CountNone, "se", false, "", 2}, true),
		tt.Args("echo\nx").Rets(Invocation{CountNone, "echo", false, "x", 5}, true),
		tt.Args("!ls").Rets(Invocation{CountNone, "!", false, "ls", 1}, true),

		tt.Args("echo-x").Rets(Invocation{}, false),
		tt.Args(`echo"x"`).Rets(Invocation{}, false),
		tt.Args("123").Rets(Invocation{}, false),
		tt.Args("").Rets(Invocation{}, false),
		tt.Args("% foo").Rets(Invocation{}, false),
	})
}

func TestReplaceTokens(t *testing.T) {
	tt.Test(t, tt.Fn("ReplaceTokens", ReplaceTokens), tt.Table{
		tt.Args("echo <args>", map[string]any{"args": "bar"}).Rets("echo bar"),
		tt.Args("echo <q-args>", map[string]any{"args": `a "b"`}).Rets(`echo "a \"b\""`),
		tt.Args("<count>x<q-count>", map[string]any{"count": 3}).Rets("3x3"),
		tt.Args("a<lt>b> <q-lt>", map[string]any{}).Rets("a<b> <"),
		tt.Args("<bang><nope>", map[string]any{"bang": "!"}).Rets("!<nope>"),
		tt.Args("<q-bool>", map[string]any{"bool": true}).Rets(`"true"`),
	})
}
