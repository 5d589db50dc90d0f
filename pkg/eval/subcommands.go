package eval

import (
	"strings"

	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/parse"
)

// SubCommands calls f with the first command of line, then with the command
// found in its sub-command argument, and so on, until f returns false. It
// stops silently at the first command that cannot be resolved or parsed.
func (ev *Evaler) SubCommands(line string, f func(*Command, *getopt.Args) bool) {
	for {
		inv, ok := parse.ParseCommand(line)
		if !ok {
			return
		}
		cmd := ev.Get(inv.Name)
		if cmd == nil {
			return
		}
		args, err := cmd.ParseArgs(inv.Args, inv.Count, inv.Bang, nil)
		if err != nil || !f(cmd, args) || !cmd.HasSubCommand {
			return
		}
		line = args.Arg(cmd.SubCommand)
	}
}

// HasPrivateData reports whether a command line may hold private data, such
// as an URL to be kept out of persistent history.
func (ev *Evaler) HasPrivateData(line string) bool {
	private := false
	ev.SubCommands(line, func(cmd *Command, args *getopt.Args) bool {
		if cmd.PrivateData == nil || cmd.PrivateData(args) {
			private = true
			return false
		}
		return true
	})
	return private
}

// HasDomain reports whether a command line references host or one of its
// subdomains.
func (ev *Evaler) HasDomain(line, host string) bool {
	found := false
	ev.SubCommands(line, func(cmd *Command, args *getopt.Args) bool {
		if cmd.Domains == nil {
			return true
		}
		for _, d := range cmd.Domains(args) {
			if IsSubdomain(d, host) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// IsSubdomain reports whether domain is host or a subdomain of it.
func IsSubdomain(domain, host string) bool {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return domain == host || strings.HasSuffix(domain, "."+host)
}
