package options

import (
	"strings"

	"src.exline.sh/pkg/complete"
)

// Values of the wildmode and altwildmode options.
var wildmodeValues = []complete.Item{
	{Text: "", Description: "Complete only the first match"},
	{Text: "full", Description: "Complete the next full match"},
	{Text: "longest", Description: "Complete to longest common string"},
	{Text: "list", Description: "If more than one match, list all matches"},
	{Text: "list:full", Description: "List all and complete first match"},
	{Text: "list:longest", Description: "List all and complete common string"},
}

// WildmodeHas reports whether a wildmode element, such as "list:full", has
// the wildtype key.
func WildmodeHas(element, key string) bool {
	first, second, _ := strings.Cut(element, ":")
	return first == key || second == key
}

func validWildmode(v any) bool {
	for _, element := range v.([]string) {
		found := false
		for _, it := range wildmodeValues {
			if it.Text == element {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func validWildcase(v any) bool {
	for _, p := range v.([]Pattern) {
		if _, err := complete.ParseCaseMode(p.Result); err != nil {
			return false
		}
	}
	return true
}

func atLeast(min int) func(any) bool {
	return func(v any) bool { return v.(int) >= min }
}

func builtinOptions() []*Option {
	return []*Option{
		{
			Names:       []string{"history", "hi"},
			Description: "Number of Ex commands to store in the command-line history",
			Type:        Number,
			Default:     "500",
			Validator:   atLeast(0),
		},
		{
			Names:       []string{"maxitems"},
			Description: "Maximum number of items to display at once",
			Type:        Number,
			Default:     "20",
			Validator:   atLeast(1),
		},
		{
			Names:       []string{"messages", "msgs"},
			Description: "Number of messages to store in the message history",
			Type:        Number,
			Default:     "100",
			Validator:   atLeast(0),
		},
		{
			Names:       []string{"autocomplete", "au"},
			Description: "Automatically update the completion list on any key press",
			Type:        RegexpList,
			Default:     ".*",
		},
		{
			Names:       []string{"wildcase", "wic"},
			Description: "Completion case matching mode",
			Type:        RegexpMap,
			Default:     "smart",
			Validator:   validWildcase,
			Values: []complete.Item{
				{Text: "smart", Description: "Case is significant when capital letters are typed"},
				{Text: "match", Description: "Case is always significant"},
				{Text: "ignore", Description: "Case is never significant"},
			},
		},
		{
			Names:       []string{"wildmode", "wim"},
			Description: "Define how command line completion works",
			Type:        StringList,
			Default:     "list:full",
			Validator:   validWildmode,
			Values:      wildmodeValues,
			CheckHas:    WildmodeHas,
		},
		{
			Names:       []string{"altwildmode", "awim"},
			Description: "Define how command line completion works when Alt is held",
			Type:        StringList,
			Default:     "list:longest",
			Validator:   validWildmode,
			Values:      wildmodeValues,
			CheckHas:    WildmodeHas,
		},
		{
			Names:       []string{"wildsort", "wis"},
			Description: "Regexp list of which contexts to sort",
			Type:        RegexpList,
			Default:     ".*",
		},
		{
			Names:       []string{"visualbell", "vb"},
			Description: "Use visual bell instead of beeping on errors",
			Type:        Boolean,
			Default:     "false",
		},
	}
}
