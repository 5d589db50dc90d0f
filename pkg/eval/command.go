package eval

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/getopt"
)

// Action is the function run by a command.
type Action func(fm *Frame, args *getopt.Args) error

// Completer completes the arguments of a command. The context has been
// advanced to the argument under the cursor.
type Completer func(c *complete.Context, args *getopt.Args) error

// Extra holds the optional properties of a command.
type Extra struct {
	// ArgCount is the argument count policy: "0", "1", "?", "*" or "+". The
	// empty string means "*".
	ArgCount string
	Options  []*getopt.OptionSpec
	// Bang and Count allow a trailing "!" and a leading count respectively.
	Bang  bool
	Count bool
	// When HasLiteral is true, the positional arguments starting at index
	// Literal are taken verbatim as one string.
	Literal    int
	HasLiteral bool
	// HereDoc allows the literal argument to end in "<<MARKER".
	HereDoc             bool
	AllowUnknownOptions bool
	Completer           Completer
	// Domains returns the domains referenced by an invocation.
	Domains func(args *getopt.Args) []string
	// PrivateData reports whether an invocation holds private data. A nil
	// PrivateData means that every invocation does.
	PrivateData func(args *getopt.Args) bool
	// When HasSubCommand is true, the positional argument at index
	// SubCommand is itself a command line.
	SubCommand    int
	HasSubCommand bool
	// Always is run instead of the action while the command is in a skipped
	// conditional branch. Commands without it are not run at all there.
	Always Action

	// Set for commands defined by the user.
	User            bool
	ReplacementText string
	// CompleteName is the -complete value the user command was defined with.
	CompleteName string
}

// NoPrivateData can be used as Extra.PrivateData for commands that never hold
// private data themselves.
func NoPrivateData(*getopt.Args) bool { return false }

// Command is an Ex command.
type Command struct {
	// Specs are the name specs the command was created with, such as
	// "com[mand]".
	Specs []string
	// Name is the canonical name, the first long name.
	Name       string
	LongNames  []string
	ShortNames []string
	// Names are all long and short names.
	Names       []string
	Description string
	Action      Action
	Extra
}

var specPattern = regexp.MustCompile(`^([^[]+)(?:\[(.*)\])?$`)

// ParseSpecs converts name specs of the form "short[tail]" to their long and
// short names: ["abc[def]", "ghi"] becomes [["abcdef", "abc"], ["ghi"]].
func ParseSpecs(specs []string) [][]string {
	parsed := make([][]string, len(specs))
	for i, spec := range specs {
		m := specPattern.FindStringSubmatch(spec)
		switch {
		case m == nil:
			parsed[i] = []string{spec}
		case m[2] != "":
			parsed[i] = []string{m[1] + m[2], m[1]}
		default:
			parsed[i] = []string{m[1]}
		}
	}
	return parsed
}

// NewCommand creates a command from name specs.
func NewCommand(specs []string, description string, action Action, extra Extra) *Command {
	cmd := &Command{
		Specs:       specs,
		Description: description,
		Action:      action,
		Extra:       extra,
	}
	for _, names := range ParseSpecs(specs) {
		cmd.LongNames = append(cmd.LongNames, names[0])
		if len(names) > 1 {
			cmd.ShortNames = append(cmd.ShortNames, names[1])
		}
		cmd.Names = append(cmd.Names, names...)
	}
	if len(cmd.LongNames) > 0 {
		cmd.Name = cmd.LongNames[0]
	}
	return cmd
}

// HasName reports whether the command can be invoked as name. A spec
// "com[mand]" accepts every prefix of "command" at least as long as "com".
func (c *Command) HasName(name string) bool {
	for _, spec := range c.Specs {
		min := strings.IndexByte(spec, '[')
		full := strings.Replace(strings.Replace(spec, "[", "", 1), "]", "", 1)
		if min == -1 {
			min = len(full)
		}
		if strings.HasPrefix(full, name) && len(name) >= min {
			return true
		}
	}
	return false
}

// Spec returns the argument spec of the command. The readHeredoc function is
// used for commands accepting a here document; it may be nil.
func (c *Command) Spec(readHeredoc func(marker string) (string, error)) *getopt.Spec {
	literal := getopt.NoLiteral
	if c.HasLiteral {
		literal = c.Literal
	}
	return &getopt.Spec{
		Options:             c.Options,
		ArgCount:            c.ArgCount,
		AllowUnknownOptions: c.AllowUnknownOptions,
		Literal:             literal,
		HereDoc:             c.HereDoc,
		ReadHeredoc:         readHeredoc,
	}
}

// ParseArgs parses the argument string of an invocation of the command.
func (c *Command) ParseArgs(str string, count int, bang bool, readHeredoc func(string) (string, error)) (*getopt.Args, error) {
	args, err := getopt.Parse(str, c.Spec(readHeredoc))
	args.Command = c.Name
	args.Count = count
	args.Bang = bang
	return args, err
}

// Errors returned by Registry.
var (
	ErrCommandExists   = errors.New("command already exists")
	ErrNotUserCommand  = errors.New("not a user-defined command")
	ErrNoSuchCommand   = errors.New("no such command")
	ErrInvalidSpecName = errors.New("invalid command name")
)

// Registry holds Ex commands. Built-in commands can never be shadowed; user
// commands can only be replaced explicitly.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Add adds a built-in command.
func (r *Registry) Add(specs []string, description string, action Action, extra Extra) (*Command, error) {
	extra.User = false
	cmd := NewCommand(specs, description, action, extra)
	return cmd, r.add(cmd, false)
}

// AddUserCommand adds a user command. An existing user command with the same
// name is replaced if replace is true.
func (r *Registry) AddUserCommand(specs []string, description string, action Action, extra Extra, replace bool) (*Command, error) {
	extra.User = true
	if description == "" {
		description = defaultUserDescription
	}
	cmd := NewCommand(specs, description, action, extra)
	return cmd, r.add(cmd, replace)
}

func (r *Registry) add(cmd *Command, replace bool) error {
	if cmd.Name == "" {
		return ErrInvalidSpecName
	}
	for _, name := range cmd.Names {
		existing, ok := r.byName[name]
		if !ok {
			continue
		}
		if !cmd.User || !existing.User || !replace {
			return fmt.Errorf("%w: %s", ErrCommandExists, name)
		}
	}
	for _, name := range cmd.Names {
		if existing, ok := r.byName[name]; ok {
			r.remove(existing)
		}
	}
	r.commands = append(r.commands, cmd)
	for _, name := range cmd.Names {
		r.byName[name] = cmd
	}
	return nil
}

func (r *Registry) remove(cmd *Command) {
	for _, name := range cmd.Names {
		if r.byName[name] == cmd {
			delete(r.byName, name)
		}
	}
	for i, c := range r.commands {
		if c == cmd {
			r.commands = append(r.commands[:i], r.commands[i+1:]...)
			break
		}
	}
}

// Get returns the command invoked by name, or nil. Exact names take
// precedence over abbreviations.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.byName[name]; ok {
		return cmd
	}
	for _, cmd := range r.commands {
		if cmd.HasName(name) {
			return cmd
		}
	}
	return nil
}

// GetUserCommand returns the user command invoked by name, or nil.
func (r *Registry) GetUserCommand(name string) *Command {
	for _, cmd := range r.commands {
		if cmd.User && cmd.HasName(name) {
			return cmd
		}
	}
	return nil
}

// UserCommands returns all user commands, in the order they were added.
func (r *Registry) UserCommands() []*Command {
	var cmds []*Command
	for _, cmd := range r.commands {
		if cmd.User {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// RemoveUserCommand removes the user command invoked by name.
func (r *Registry) RemoveUserCommand(name string) error {
	cmd := r.GetUserCommand(name)
	if cmd == nil {
		if r.Get(name) != nil {
			return fmt.Errorf("%w: %s", ErrNotUserCommand, name)
		}
		return fmt.Errorf("%w: %s", ErrNoSuchCommand, name)
	}
	r.remove(cmd)
	return nil
}

// Commands returns all commands sorted by name.
func (r *Registry) Commands() []*Command {
	cmds := append([]*Command(nil), r.commands...)
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}
