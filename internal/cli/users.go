package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"wealthtrack/internal/models"
)

type usersCmd struct{ app *App }

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "list users; the active one is marked" }
func (*usersCmd) Usage() string {
	return `wealthtrack users
`
}
func (*usersCmd) SetFlags(*flag.FlagSet) {}

func (c *usersCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := c.app.Store
	active := store.ActiveUser()
	counts := map[string]int{}
	for _, a := range store.Assets() {
		counts[a.UserID]++
	}

	var b strings.Builder
	b.WriteString("| | Name | Assets | ID |\n|---|---|---|---|\n")
	for _, u := range store.Users() {
		mark := ""
		if u.ID == active.ID {
			mark = "*"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | `%s` |\n", mark, escapeCell(u.Name), counts[u.ID], u.ID)
	}
	c.app.printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type addUserCmd struct{ app *App }

func (*addUserCmd) Name() string     { return "add-user" }
func (*addUserCmd) Synopsis() string { return "create a user and make it active" }
func (*addUserCmd) Usage() string {
	return `wealthtrack add-user <name>
`
}
func (*addUserCmd) SetFlags(*flag.FlagSet) {}

func (c *addUserCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.Join(f.Args(), " ")
	if strings.TrimSpace(name) == "" {
		return c.app.usage(c, "a user name is required")
	}
	u, err := c.app.Store.AddUser(name)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Added user %q (%s), now active\n", u.Name, u.ID)
	return subcommands.ExitSuccess
}

type renameUserCmd struct{ app *App }

func (*renameUserCmd) Name() string     { return "rename-user" }
func (*renameUserCmd) Synopsis() string { return "rename a user" }
func (*renameUserCmd) Usage() string {
	return `wealthtrack rename-user <id> <name>
`
}
func (*renameUserCmd) SetFlags(*flag.FlagSet) {}

func (c *renameUserCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		return c.app.usage(c, "a user id and a new name are required")
	}
	u, err := c.app.Store.RenameUser(f.Arg(0), strings.Join(f.Args()[1:], " "))
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Renamed user %s to %q\n", u.ID, u.Name)
	return subcommands.ExitSuccess
}

type removeUserCmd struct {
	app *App
	yes bool
}

func (*removeUserCmd) Name() string     { return "rm-user" }
func (*removeUserCmd) Synopsis() string { return "remove a user and all of their assets" }
func (*removeUserCmd) Usage() string {
	return `wealthtrack rm-user [-yes] <id>

  The last remaining user cannot be removed.
`
}
func (c *removeUserCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Do not ask for confirmation.")
}

func (c *removeUserCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.usage(c, "exactly one user id is required")
	}
	id := f.Arg(0)
	if !c.yes && !c.app.confirm(fmt.Sprintf("Remove user %s and all of their assets?", id)) {
		fmt.Fprintln(c.app.Out, "Cancelled")
		return subcommands.ExitSuccess
	}
	if err := c.app.Store.RemoveUser(id); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Removed user %s; active user is %q\n", id, c.app.Store.ActiveUser().Name)
	return subcommands.ExitSuccess
}

type useCmd struct{ app *App }

func (*useCmd) Name() string     { return "use" }
func (*useCmd) Synopsis() string { return "switch the active user" }
func (*useCmd) Usage() string {
	return `wealthtrack use <id|name>
`
}
func (*useCmd) SetFlags(*flag.FlagSet) {}

func (c *useCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return c.app.usage(c, "a user id or name is required")
	}
	id := resolveUser(c.app.Store.Users(), strings.Join(f.Args(), " "))
	if err := c.app.Store.SetActiveUser(id); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Active user is now %q\n", c.app.Store.ActiveUser().Name)
	return subcommands.ExitSuccess
}

// resolveUser accepts an id or, failing that, a case-insensitive name.
func resolveUser(users []models.User, ref string) string {
	for _, u := range users {
		if u.ID == ref {
			return u.ID
		}
	}
	for _, u := range users {
		if strings.EqualFold(u.Name, ref) {
			return u.ID
		}
	}
	return ref
}
