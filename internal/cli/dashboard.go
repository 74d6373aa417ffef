package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"wealthtrack/internal/advisor"
	"wealthtrack/internal/display"
	"wealthtrack/internal/logger"
	"wealthtrack/internal/models"
	"wealthtrack/internal/portfolio"
)

type dashboardCmd struct {
	app    *App
	assets bool
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show the active user's valuation and allocation" }
func (*dashboardCmd) Usage() string {
	return `wealthtrack dashboard [-assets]

  Totals are in CNY. Allocations are listed in the order their currency or
  path first appears among the assets.
`
}
func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.assets, "assets", false, "Also list every asset.")
}

func (c *dashboardCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := c.app.Store
	md := dashboardMarkdown(store.ActiveUser(), store.Stats())
	if c.assets {
		if assets := store.ActiveAssets(); len(assets) > 0 {
			md += "\n## Assets\n\n" + assetTable(assets, store.Currencies(), store.Paths())
		}
	}
	c.app.printMarkdown(md)
	return subcommands.ExitSuccess
}

func dashboardMarkdown(user models.User, stats models.PortfolioStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", user.Name)
	b.WriteString("| Total value (CNY) | Weighted annual yield | Projected annual income |\n|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %s | %s | %s |\n",
		display.FormatHome(stats.TotalValueCNY),
		display.FormatPercent(stats.TotalProjectedYield),
		display.FormatHome(portfolio.ProjectedIncome(stats)),
	)

	if len(stats.CurrencyDistribution) == 0 {
		b.WriteString("\nNo assets yet.\n")
		return b.String()
	}

	b.WriteString("\n## By currency\n\n| Currency | Value (CNY) |\n|---|---:|\n")
	for _, s := range stats.CurrencyDistribution {
		fmt.Fprintf(&b, "| %s | %s |\n", s.Name, display.FormatHome(s.Value))
	}

	b.WriteString("\n## By path\n\n| Path | Value (CNY) | Avg yield |\n|---|---:|---:|\n")
	for _, s := range stats.PathDistribution {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(s.Name), display.FormatHome(s.Value), display.FormatPercent(s.AvgYield))
	}
	return b.String()
}

type adviseCmd struct{ app *App }

func (*adviseCmd) Name() string { return "advise" }
func (*adviseCmd) Synopsis() string {
	return "ask the advisory model about the active user's portfolio"
}
func (*adviseCmd) Usage() string {
	return `wealthtrack advise

  Requires a Gemini API key (GEMINI_API_KEY or [gemini] api_key).
`
}
func (*adviseCmd) SetFlags(*flag.FlagSet) {}

func (c *adviseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := c.app.Store
	assets := store.ActiveAssets()
	if len(assets) == 0 {
		fmt.Fprintln(c.app.Err, "error: add some assets before asking for advice")
		return subcommands.ExitFailure
	}

	var gen advisor.TextGenerator
	if c.app.Generator != nil {
		g, err := c.app.Generator(ctx)
		if err != nil {
			logger.Get().Warnw("advisory model unavailable", "error", err)
		} else {
			gen = g
		}
	}

	fmt.Fprintln(c.app.Err, "Analysing portfolio...")
	text := advisor.New(gen).Analyze(ctx, assets, store.Currencies(), store.Paths())
	c.app.printMarkdown(text)
	if text == advisor.FallbackMessage {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
