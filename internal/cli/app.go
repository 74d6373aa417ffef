// Package cli implements the wealthtrack terminal client as a set of
// google/subcommands commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"wealthtrack/internal/advisor"
	apperrors "wealthtrack/internal/errors"
	"wealthtrack/internal/models"
	"wealthtrack/internal/rates"
	"wealthtrack/internal/workspace"
)

// SyncClient is the client side of the sync protocol.
type SyncClient interface {
	Register(ctx context.Context) (string, error)
	Upload(ctx context.Context, id string, snap *models.Snapshot) (int64, error)
	Download(ctx context.Context, id string) (*models.Snapshot, error)
	Delete(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) bool
}

// RateSource fetches fresh exchange rates for a currency table.
type RateSource interface {
	Refresh(ctx context.Context, currencies []models.Currency) ([]rates.Quote, []rates.FetchError)
}

// App is the shared state every command runs against.
type App struct {
	Store *workspace.Store
	Sync  SyncClient
	Rates RateSource
	// Generator builds the advisory text generator on first use.
	Generator func(ctx context.Context) (advisor.TextGenerator, error)
	APIURL    string

	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	Plain bool
}

// Register adds every command to c.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&usersCmd{app: app}, "users")
	c.Register(&addUserCmd{app: app}, "users")
	c.Register(&renameUserCmd{app: app}, "users")
	c.Register(&removeUserCmd{app: app}, "users")
	c.Register(&useCmd{app: app}, "users")

	c.Register(&assetsCmd{app: app}, "assets")
	c.Register(&addAssetCmd{app: app}, "assets")
	c.Register(&editAssetCmd{app: app}, "assets")
	c.Register(&removeAssetCmd{app: app}, "assets")

	c.Register(&currenciesCmd{app: app}, "currencies")
	c.Register(&addCurrencyCmd{app: app}, "currencies")
	c.Register(&setRateCmd{app: app}, "currencies")
	c.Register(&removeCurrencyCmd{app: app}, "currencies")
	c.Register(&refreshRatesCmd{app: app}, "currencies")

	c.Register(&pathsCmd{app: app}, "paths")
	c.Register(&addPathCmd{app: app}, "paths")
	c.Register(&renamePathCmd{app: app}, "paths")
	c.Register(&removePathCmd{app: app}, "paths")

	c.Register(&dashboardCmd{app: app}, "portfolio")
	c.Register(&adviseCmd{app: app}, "portfolio")

	c.Register(&uploadCmd{app: app}, "sync")
	c.Register(&downloadCmd{app: app}, "sync")
	c.Register(&forgetCmd{app: app}, "sync")
	c.Register(&syncStatusCmd{app: app}, "sync")
}

// printMarkdown renders md for the terminal, or writes it untouched in plain
// mode or when rendering fails.
func (a *App) printMarkdown(md string) {
	if !a.Plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(a.Out, out)
				return
			}
		}
	}
	fmt.Fprint(a.Out, md)
	if !strings.HasSuffix(md, "\n") {
		fmt.Fprintln(a.Out)
	}
}

// fail reports err and returns the failure status.
func (a *App) fail(err error) subcommands.ExitStatus {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintf(a.Err, "error: %s\n", appErr.Message)
	} else {
		fmt.Fprintf(a.Err, "error: %v\n", err)
	}
	return subcommands.ExitFailure
}

// usage reports a command-line mistake.
func (a *App) usage(cmd subcommands.Command, msg string) subcommands.ExitStatus {
	fmt.Fprintf(a.Err, "%s\nusage: %s", msg, cmd.Usage())
	return subcommands.ExitUsageError
}

// confirm asks a yes/no question on In; anything but y/yes is a no.
func (a *App) confirm(question string) bool {
	fmt.Fprintf(a.Out, "%s [y/N] ", question)
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// escapeCell keeps user text from breaking a markdown table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
