package options

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map"
	"gopkg.in/yaml.v3"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[options] ")

// Store persists option values. It is satisfied by storedefs.Store.
type Store interface {
	SetOption(name, value string) error
	DelOption(name string) error
	Options() (map[string]string, error)
}

// Table is a set of options. It implements complete.Settings with the
// autocomplete, wildcase and wildsort options.
type Table struct {
	opts      *orderedmap.OrderedMap
	store     Store
	listeners []func(*Option)
}

var _ complete.Settings = (*Table)(nil)

// ErrOptionExists is returned by Add when a name is already taken.
var ErrOptionExists = errors.New("option already exists")

// NewTable creates a table with the built-in options.
func NewTable() *Table {
	t := &Table{opts: orderedmap.New()}
	for _, o := range builtinOptions() {
		if err := t.Add(o); err != nil {
			panic(err)
		}
	}
	return t
}

// NewEmptyTable creates a table without any option.
func NewEmptyTable() *Table {
	return &Table{opts: orderedmap.New()}
}

// Add adds an option with its default value.
func (t *Table) Add(o *Option) error {
	for _, name := range o.Names {
		if t.Get(name) != nil {
			return fmt.Errorf("%w: %s", ErrOptionExists, name)
		}
	}
	v, err := o.parse(o.Default)
	if err != nil {
		return err
	}
	o.value = v
	t.opts.Set(o.Name(), o)
	return nil
}

// Get returns the option with the given name, or nil.
func (t *Table) Get(name string) *Option {
	if v, ok := t.opts.Get(name); ok {
		return v.(*Option)
	}
	for pair := t.opts.Oldest(); pair != nil; pair = pair.Next() {
		if o := pair.Value.(*Option); o.HasName(name) {
			return o
		}
	}
	return nil
}

// All returns all options in the order they were added.
func (t *Table) All() []*Option {
	var opts []*Option
	for pair := t.opts.Oldest(); pair != nil; pair = pair.Next() {
		opts = append(opts, pair.Value.(*Option))
	}
	return opts
}

// OnChange adds a function called after each change of an option.
func (t *Table) OnChange(f func(*Option)) {
	t.listeners = append(t.listeners, f)
}

func (t *Table) changed(o *Option) {
	if t.store != nil {
		var err error
		if o.IsDefault() {
			err = t.store.DelOption(o.Name())
		} else {
			err = t.store.SetOption(o.Name(), o.Text())
		}
		if err != nil {
			logger.Printf("saving option %s: %v", o.Name(), err)
		}
	}
	for _, f := range t.listeners {
		f(o)
	}
}

// Set sets an option from its textual value.
func (t *Table) Set(name, value string) error {
	return t.Apply(name, "=", value, false)
}

// Apply applies a :set operator to an option. See (*Option).Apply.
func (t *Table) Apply(name, op, value string, invert bool) error {
	o := t.Get(name)
	if o == nil {
		return unknownOption(name)
	}
	var err error
	if op == "=" && !invert {
		err = o.Set(value)
	} else {
		err = o.Apply(op, value, invert)
	}
	if err != nil {
		return err
	}
	t.changed(o)
	return nil
}

// SetBool sets a boolean option.
func (t *Table) SetBool(name string, b bool) error {
	o := t.Get(name)
	if o == nil {
		return unknownOption(name)
	}
	if o.Type != Boolean {
		return errInvalid(name)
	}
	o.value = b
	t.changed(o)
	return nil
}

// Reset restores the default value of an option.
func (t *Table) Reset(name string) error {
	o := t.Get(name)
	if o == nil {
		return unknownOption(name)
	}
	o.Reset()
	t.changed(o)
	return nil
}

func unknownOption(name string) error {
	return fmt.Errorf("E518: Unknown option: %s", name)
}

// Int returns the value of a Number option; it panics if there is no such
// option.
func (t *Table) Int(name string) int { return t.mustGet(name).value.(int) }

// Bool returns the value of a Boolean option.
func (t *Table) Bool(name string) bool { return t.mustGet(name).value.(bool) }

// Text returns the textual value of an option.
func (t *Table) Text(name string) string { return t.mustGet(name).Text() }

// List returns the value of a StringList option.
func (t *Table) List(name string) []string { return t.mustGet(name).value.([]string) }

// Has reports whether the StringList option name has an element matching
// key.
func (t *Table) Has(name, key string) bool { return t.mustGet(name).Has(key) }

func (t *Table) mustGet(name string) *Option {
	o := t.Get(name)
	if o == nil {
		panic("no such option: " + name)
	}
	return o
}

// AutoComplete looks up the context name in the autocomplete option.
func (t *Table) AutoComplete(context string) bool {
	result, _ := t.mustGet("autocomplete").Lookup(context)
	return result == "true"
}

// WildSort looks up the context name in the wildsort option.
func (t *Table) WildSort(context string) bool {
	result, _ := t.mustGet("wildsort").Lookup(context)
	return result == "true"
}

// WildCase looks up the context name in the wildcase option.
func (t *Table) WildCase(context string) complete.CaseMode {
	result, ok := t.mustGet("wildcase").Lookup(context)
	if !ok {
		return complete.CaseSmart
	}
	mode, err := complete.ParseCaseMode(result)
	if err != nil {
		return complete.CaseSmart
	}
	return mode
}

// LoadYAML sets options from a YAML mapping of option names to values.
// Sequences are joined with commas. All entries are applied; the returned
// error combines the failures.
func (t *Table) LoadYAML(r io.Reader) error {
	var values map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		node := values[name]
		value, err := nodeValue(&node)
		if err == nil {
			err = t.Set(name, value)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", node.Line, err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "\n"))
	}
	return nil
}

func nodeValue(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.SequenceNode:
		var elements []string
		if err := node.Decode(&elements); err != nil {
			return "", err
		}
		return strings.Join(elements, ","), nil
	}
	return "", fmt.Errorf("unsupported value of kind %v", node.Kind)
}

// LoadFile sets options from a YAML file. A missing file is not an error.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	if err := t.LoadYAML(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// DumpYAML writes the options that differ from their defaults as YAML.
func (t *Table) DumpYAML(w io.Writer) error {
	values := make(map[string]any)
	for _, o := range t.All() {
		if o.IsDefault() {
			continue
		}
		switch v := o.value.(type) {
		case int, bool:
			values[o.Name()] = v
		default:
			if o.Type.IsList() {
				values[o.Name()] = splitList(o.Text())
			} else {
				values[o.Name()] = o.Text()
			}
		}
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(values); err != nil {
		return err
	}
	return enc.Close()
}

// SetStore restores the option values saved in s, and saves every later
// change there. Saved values of unknown options are ignored.
func (t *Table) SetStore(s Store) error {
	values, err := s.Options()
	if err != nil {
		return err
	}
	for name, value := range values {
		o := t.Get(name)
		if o == nil {
			logger.Printf("ignoring saved value of unknown option %s", name)
			continue
		}
		if err := o.Set(value); err != nil {
			logger.Printf("ignoring saved value of option %s: %v", name, err)
			continue
		}
		for _, f := range t.listeners {
			f(o)
		}
	}
	t.store = s
	return nil
}
