package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type pathsCmd struct{ app *App }

func (*pathsCmd) Name() string     { return "paths" }
func (*pathsCmd) Synopsis() string { return "list investment paths" }
func (*pathsCmd) Usage() string {
	return `wealthtrack paths
`
}
func (*pathsCmd) SetFlags(*flag.FlagSet) {}

func (c *pathsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var b strings.Builder
	b.WriteString("| ID | Name | Icon |\n|---|---|---|\n")
	for _, p := range c.app.Store.Paths() {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", p.ID, escapeCell(p.Name), p.Icon)
	}
	c.app.printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type addPathCmd struct {
	app  *App
	icon string
}

func (*addPathCmd) Name() string     { return "add-path" }
func (*addPathCmd) Synopsis() string { return "add an investment path" }
func (*addPathCmd) Usage() string {
	return `wealthtrack add-path [-icon <name>] <name>
`
}
func (c *addPathCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.icon, "icon", "", "Icon name; defaults to Target.")
}

func (c *addPathCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.Join(f.Args(), " ")
	if strings.TrimSpace(name) == "" {
		return c.app.usage(c, "a path name is required")
	}
	p, err := c.app.Store.AddPath(name, c.icon)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Added path %q (%s)\n", p.Name, p.ID)
	return subcommands.ExitSuccess
}

type renamePathCmd struct{ app *App }

func (*renamePathCmd) Name() string     { return "rename-path" }
func (*renamePathCmd) Synopsis() string { return "rename an investment path" }
func (*renamePathCmd) Usage() string {
	return `wealthtrack rename-path <id> <name>
`
}
func (*renamePathCmd) SetFlags(*flag.FlagSet) {}

func (c *renamePathCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		return c.app.usage(c, "a path id and a new name are required")
	}
	p, err := c.app.Store.RenamePath(f.Arg(0), strings.Join(f.Args()[1:], " "))
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Renamed path %s to %q\n", p.ID, p.Name)
	return subcommands.ExitSuccess
}

type removePathCmd struct{ app *App }

func (*removePathCmd) Name() string     { return "rm-path" }
func (*removePathCmd) Synopsis() string { return "remove an investment path; assets are kept" }
func (*removePathCmd) Usage() string {
	return `wealthtrack rm-path <id>

  Assets on the removed path are grouped under "Unknown".
`
}
func (*removePathCmd) SetFlags(*flag.FlagSet) {}

func (c *removePathCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.usage(c, "exactly one path id is required")
	}
	if err := c.app.Store.RemovePath(f.Arg(0)); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Removed path %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
