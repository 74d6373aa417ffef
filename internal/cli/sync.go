package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"wealthtrack/internal/models"
	"wealthtrack/internal/syncclient"
)

var errServerUnreachable = errors.New("sync server is unreachable, check api_url and try again")

func formatServerTime(ms int64) string {
	if ms == 0 {
		return "an unknown time"
	}
	return models.MillisToTime(ms).Local().Format(time.DateTime)
}

type uploadCmd struct{ app *App }

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "upload the whole workspace to the sync server" }
func (*uploadCmd) Usage() string {
	return `wealthtrack upload

  Registers a sync ID on first use, then replaces whatever the server holds for
  it with the local workspace.
`
}
func (*uploadCmd) SetFlags(*flag.FlagSet) {}

func (c *uploadCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, store := c.app.Sync, c.app.Store
	if !client.HealthCheck(ctx) {
		return c.app.fail(errServerUnreachable)
	}

	id := store.SyncCode()
	if id == "" {
		var err error
		if id, err = client.Register(ctx); err != nil {
			return c.app.fail(err)
		}
		if err := store.SetSyncCode(id); err != nil {
			return c.app.fail(err)
		}
		fmt.Fprintf(c.app.Out, "Registered sync ID %s; keep it to download on another device\n", id)
	}

	ts, err := client.Upload(ctx, id, store.Snapshot())
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Uploaded workspace at %s\n", formatServerTime(ts))
	return subcommands.ExitSuccess
}

type downloadCmd struct {
	app *App
	id  string
	yes bool
}

func (*downloadCmd) Name() string     { return "download" }
func (*downloadCmd) Synopsis() string { return "replace the local workspace with the server copy" }
func (*downloadCmd) Usage() string {
	return `wealthtrack download [-id <sync id>] [-yes]

  Uses the saved sync ID unless -id is given; a given ID is saved on success.
`
}
func (c *downloadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Sync ID to download from.")
	f.BoolVar(&c.yes, "yes", false, "Do not ask for confirmation.")
}

func (c *downloadCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, store := c.app.Sync, c.app.Store
	id := c.id
	if id == "" {
		id = store.SyncCode()
	}
	if id == "" {
		return c.app.fail(errors.New("no sync ID saved; upload first or pass -id"))
	}
	if !client.HealthCheck(ctx) {
		return c.app.fail(errServerUnreachable)
	}

	snap, err := client.Download(ctx, id)
	if errors.Is(err, syncclient.ErrNotFound) {
		return c.app.fail(fmt.Errorf("nothing stored for sync ID %s; upload first", id))
	}
	if err != nil {
		return c.app.fail(err)
	}

	question := fmt.Sprintf("Replace local data with the snapshot uploaded at %s (%d assets)?",
		formatServerTime(snap.ServerTimestamp), len(snap.Assets))
	if !c.yes && !c.app.confirm(question) {
		fmt.Fprintln(c.app.Out, "Cancelled, local data unchanged")
		return subcommands.ExitSuccess
	}

	if err := store.Restore(snap); err != nil {
		return c.app.fail(err)
	}
	if id != store.SyncCode() {
		if err := store.SetSyncCode(id); err != nil {
			return c.app.fail(err)
		}
	}
	fmt.Fprintf(c.app.Out, "Restored %d users and %d assets\n", len(snap.Users), len(snap.Assets))
	return subcommands.ExitSuccess
}

type forgetCmd struct {
	app *App
	yes bool
}

func (*forgetCmd) Name() string     { return "forget" }
func (*forgetCmd) Synopsis() string { return "delete the server copy and forget the sync ID" }
func (*forgetCmd) Usage() string {
	return `wealthtrack forget [-yes]
`
}
func (c *forgetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Do not ask for confirmation.")
}

func (c *forgetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := c.app.Store
	id := store.SyncCode()
	if id == "" {
		fmt.Fprintln(c.app.Out, "No sync ID saved")
		return subcommands.ExitSuccess
	}
	if !c.yes && !c.app.confirm(fmt.Sprintf("Delete the server copy for %s?", id)) {
		fmt.Fprintln(c.app.Out, "Cancelled")
		return subcommands.ExitSuccess
	}

	err := c.app.Sync.Delete(ctx, id)
	if err != nil && !errors.Is(err, syncclient.ErrNotFound) {
		return c.app.fail(err)
	}
	if err := store.SetSyncCode(""); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Forgot sync ID %s\n", id)
	return subcommands.ExitSuccess
}

type syncStatusCmd struct{ app *App }

func (*syncStatusCmd) Name() string     { return "sync-status" }
func (*syncStatusCmd) Synopsis() string { return "show the sync server and saved sync ID" }
func (*syncStatusCmd) Usage() string {
	return `wealthtrack sync-status
`
}
func (*syncStatusCmd) SetFlags(*flag.FlagSet) {}

func (c *syncStatusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	status := "unreachable"
	if c.app.Sync.HealthCheck(ctx) {
		status = "ok"
	}
	id := c.app.Store.SyncCode()
	if id == "" {
		id = "(none)"
	}
	fmt.Fprintf(c.app.Out, "Server:  %s (%s)\nSync ID: %s\n", c.app.APIURL, status, id)
	return subcommands.ExitSuccess
}
