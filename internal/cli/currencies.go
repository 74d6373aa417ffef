package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"wealthtrack/internal/display"
	"wealthtrack/internal/models"
)

type currenciesCmd struct{ app *App }

func (*currenciesCmd) Name() string     { return "currencies" }
func (*currenciesCmd) Synopsis() string { return "list currencies and their rates to CNY" }
func (*currenciesCmd) Usage() string {
	return `wealthtrack currencies
`
}
func (*currenciesCmd) SetFlags(*flag.FlagSet) {}

func (c *currenciesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var b strings.Builder
	b.WriteString("| Code | Symbol | Rate to CNY |\n|---|---|---:|\n")
	for _, cur := range c.app.Store.Currencies() {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cur.Code, escapeCell(cur.Symbol), display.FormatRate(cur.RateToCNY))
	}
	c.app.printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type addCurrencyCmd struct {
	app    *App
	symbol string
}

func (*addCurrencyCmd) Name() string     { return "add-currency" }
func (*addCurrencyCmd) Synopsis() string { return "add a currency with its rate to CNY" }
func (*addCurrencyCmd) Usage() string {
	return `wealthtrack add-currency [-symbol <glyph>] <code> <rate>
`
}
func (c *addCurrencyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Display symbol; defaults to the code.")
}

func (c *addCurrencyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return c.app.usage(c, "a currency code and a rate are required")
	}
	rate, err := strconv.ParseFloat(f.Arg(1), 64)
	if err != nil {
		return c.app.usage(c, fmt.Sprintf("invalid rate %q", f.Arg(1)))
	}
	cur, err := c.app.Store.AddCurrency(f.Arg(0), c.symbol, rate)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Added %s (%s) at %s CNY\n", cur.Code, cur.Symbol, display.FormatRate(cur.RateToCNY))
	return subcommands.ExitSuccess
}

type setRateCmd struct{ app *App }

func (*setRateCmd) Name() string     { return "set-rate" }
func (*setRateCmd) Synopsis() string { return "change a currency's rate to CNY" }
func (*setRateCmd) Usage() string {
	return `wealthtrack set-rate <code> <rate>
`
}
func (*setRateCmd) SetFlags(*flag.FlagSet) {}

func (c *setRateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return c.app.usage(c, "a currency code and a rate are required")
	}
	rate, err := strconv.ParseFloat(f.Arg(1), 64)
	if err != nil {
		return c.app.usage(c, fmt.Sprintf("invalid rate %q", f.Arg(1)))
	}
	cur, err := c.app.Store.SetCurrencyRate(f.Arg(0), rate)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "1 %s = %s CNY\n", cur.Code, display.FormatRate(cur.RateToCNY))
	return subcommands.ExitSuccess
}

type removeCurrencyCmd struct{ app *App }

func (*removeCurrencyCmd) Name() string     { return "rm-currency" }
func (*removeCurrencyCmd) Synopsis() string { return "remove a currency; assets keep their code" }
func (*removeCurrencyCmd) Usage() string {
	return `wealthtrack rm-currency <code>

  CNY cannot be removed. Assets still holding the removed code are valued with
  the first currency in the table.
`
}
func (*removeCurrencyCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCurrencyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.usage(c, "exactly one currency code is required")
	}
	code := strings.ToUpper(f.Arg(0))
	if err := c.app.Store.RemoveCurrency(code); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Removed %s\n", code)
	if n := countCurrencyRefs(c.app.Store.Assets(), code); n > 0 {
		fmt.Fprintf(c.app.Err, "warning: %d asset(s) still use %s\n", n, code)
	}
	return subcommands.ExitSuccess
}

func countCurrencyRefs(assets []models.Asset, code string) int {
	n := 0
	for _, a := range assets {
		if a.CurrencyCode == code {
			n++
		}
	}
	return n
}

type refreshRatesCmd struct{ app *App }

func (*refreshRatesCmd) Name() string     { return "refresh-rates" }
func (*refreshRatesCmd) Synopsis() string { return "update currency rates from Yahoo Finance" }
func (*refreshRatesCmd) Usage() string {
	return `wealthtrack refresh-rates

  Fetches <CODE>CNY=X quotes for every currency but CNY. Currencies that cannot
  be quoted keep their current rate.
`
}
func (*refreshRatesCmd) SetFlags(*flag.FlagSet) {}

func (c *refreshRatesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := c.app.Store
	quotes, failures := c.app.Rates.Refresh(ctx, store.Currencies())

	var b strings.Builder
	if len(quotes) > 0 {
		b.WriteString("| Code | Rate to CNY |\n|---|---:|\n")
	}
	updated := 0
	for _, q := range quotes {
		cur, err := store.SetCurrencyRate(q.Code, q.Rate)
		if err != nil {
			fmt.Fprintf(c.app.Err, "warning: %s: %v\n", q.Code, err)
			continue
		}
		updated++
		fmt.Fprintf(&b, "| %s | %s |\n", cur.Code, display.FormatRate(cur.RateToCNY))
	}
	for _, fe := range failures {
		fmt.Fprintf(c.app.Err, "warning: %v\n", fe)
	}

	if updated > 0 {
		c.app.printMarkdown(b.String())
	}
	fmt.Fprintf(c.app.Out, "Updated %d of %d currencies\n", updated, len(quotes)+len(failures))
	if updated == 0 && len(failures) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
