package prog

import "flag"

// FlagSet wraps a flag.FlagSet. Flags shared by several subprograms are
// registered lazily through its methods, so that they are registered once.
type FlagSet struct {
	*flag.FlagSet
	paths *Paths
	json  *bool
}

// Paths keeps the paths of the files that configure a session.
type Paths struct {
	// RC is the Ex script sourced at startup; empty means the default.
	RC string
	// NoRC disables sourcing the RC script.
	NoRC bool
	// Config is the YAML file with option values; empty means the default.
	Config string
}

// Paths returns the paths set by the -rc, -norc and -config flags.
func (fs *FlagSet) Paths() *Paths {
	if fs.paths == nil {
		var p Paths
		fs.StringVar(&p.RC, "rc", "", "path to the Ex script sourced at startup")
		fs.BoolVar(&p.NoRC, "norc", false, "do not source the startup script")
		fs.StringVar(&p.Config, "config", "", "path to the YAML file with option values")
		fs.paths = &p
	}
	return fs.paths
}

// JSON returns the value of the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"show the output of -buildinfo, -version or -compileonly in JSON")
		fs.json = &json
	}
	return fs.json
}
