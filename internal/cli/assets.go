package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"wealthtrack/internal/display"
	"wealthtrack/internal/models"
	"wealthtrack/internal/portfolio"
	"wealthtrack/internal/workspace"
)

type assetsCmd struct{ app *App }

func (*assetsCmd) Name() string     { return "assets" }
func (*assetsCmd) Synopsis() string { return "list the active user's assets" }
func (*assetsCmd) Usage() string {
	return `wealthtrack assets
`
}
func (*assetsCmd) SetFlags(*flag.FlagSet) {}

func (c *assetsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := c.app.Store
	assets := store.ActiveAssets()
	if len(assets) == 0 {
		fmt.Fprintf(c.app.Out, "%s has no assets yet; add one with add-asset\n", store.ActiveUser().Name)
		return subcommands.ExitSuccess
	}
	c.app.printMarkdown(assetTable(assets, store.Currencies(), store.Paths()))
	return subcommands.ExitSuccess
}

func assetTable(assets []models.Asset, currencies []models.Currency, paths []models.InvestmentPath) string {
	var b strings.Builder
	b.WriteString("| Name | Path | Amount | Value (CNY) | Yield | ID |\n|---|---|---:|---:|---:|---|\n")
	for _, a := range assets {
		cur, _ := portfolio.ResolveCurrency(a.CurrencyCode, currencies)
		name := escapeCell(a.Name)
		if a.IsDebt {
			name += " (debt)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | `%s` |\n",
			name,
			escapeCell(portfolio.ResolvePathName(a.PathID, paths)),
			display.FormatAmount(a.Amount, models.Currency{Code: a.CurrencyCode, Symbol: cur.Symbol}),
			display.FormatHome(portfolio.ValueInHome(a, currencies)),
			display.FormatPercent(a.AnnualYield),
			a.ID,
		)
	}
	return b.String()
}

// assetFlags holds the editable asset fields shared by add-asset and
// edit-asset.
type assetFlags struct {
	name         string
	path         string
	currency     string
	amount       float64
	yield        float64
	rental       float64
	appreciation float64
	note         string
	debt         bool
}

func (af *assetFlags) register(f *flag.FlagSet) {
	f.StringVar(&af.name, "name", "", "Asset name.")
	f.StringVar(&af.path, "path", "", "Investment path id or name.")
	f.StringVar(&af.currency, "currency", "CNY", "Currency code.")
	f.Float64Var(&af.amount, "amount", 0, "Amount in the asset currency; negative for liabilities.")
	f.Float64Var(&af.yield, "yield", 0, "Expected annual yield in percent (ignored for real estate).")
	f.Float64Var(&af.rental, "rental", 0, "Rental yield in percent (real estate only).")
	f.Float64Var(&af.appreciation, "appreciation", 0, "Appreciation rate in percent (real estate only).")
	f.StringVar(&af.note, "note", "", "Free-form note.")
	f.BoolVar(&af.debt, "debt", false, "Mark the asset as a loan balance.")
}

// apply copies the flags that were set on the command line onto in.
func (af *assetFlags) apply(f *flag.FlagSet, in *workspace.AssetInput, paths []models.InvestmentPath) {
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			in.Name = af.name
		case "path":
			in.PathID = resolvePath(paths, af.path)
		case "currency":
			in.CurrencyCode = af.currency
		case "amount":
			in.Amount = af.amount
		case "yield":
			in.AnnualYield = af.yield
		case "rental":
			in.RentalYield = af.rental
		case "appreciation":
			in.AppreciationRate = af.appreciation
		case "note":
			in.Note = af.note
		case "debt":
			in.IsDebt = af.debt
		}
	})
}

// resolvePath accepts a path id or, failing that, a case-insensitive name.
func resolvePath(paths []models.InvestmentPath, ref string) string {
	for _, p := range paths {
		if p.ID == ref {
			return p.ID
		}
	}
	for _, p := range paths {
		if strings.EqualFold(p.Name, ref) {
			return p.ID
		}
	}
	return ref
}

type addAssetCmd struct {
	app *App
	assetFlags
}

func (*addAssetCmd) Name() string     { return "add-asset" }
func (*addAssetCmd) Synopsis() string { return "add an asset for the active user" }
func (*addAssetCmd) Usage() string {
	return `wealthtrack add-asset -name <name> -path <path> [-currency CNY] -amount <n> [-yield <pct>]
                      [-rental <pct> -appreciation <pct>] [-note <text>] [-debt]

  For real estate paths the annual yield is rental + appreciation.
`
}
func (c *addAssetCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *addAssetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.path == "" {
		return c.app.usage(c, "-name and -path are required")
	}
	in := workspace.AssetInput{CurrencyCode: c.currency}
	c.apply(f, &in, c.app.Store.Paths())

	a, err := c.app.Store.AddAsset(in)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Added %q (%s) with yield %s\n", a.Name, a.ID, display.FormatPercent(a.AnnualYield))
	return subcommands.ExitSuccess
}

type editAssetCmd struct {
	app *App
	assetFlags
}

func (*editAssetCmd) Name() string     { return "edit-asset" }
func (*editAssetCmd) Synopsis() string { return "change fields of an asset" }
func (*editAssetCmd) Usage() string {
	return `wealthtrack edit-asset [flags] <id>

  Only the flags given are changed.
`
}
func (c *editAssetCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *editAssetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.usage(c, "exactly one asset id is required")
	}
	store := c.app.Store
	cur, err := store.Asset(f.Arg(0))
	if err != nil {
		return c.app.fail(err)
	}

	in := workspace.AssetInput{
		Name:         cur.Name,
		PathID:       cur.PathID,
		CurrencyCode: cur.CurrencyCode,
		Amount:       cur.Amount,
		AnnualYield:  cur.AnnualYield,
		Note:         cur.Note,
		IsDebt:       cur.IsDebt,
	}
	if cur.RentalYield != nil {
		in.RentalYield = *cur.RentalYield
	}
	if cur.AppreciationRate != nil {
		in.AppreciationRate = *cur.AppreciationRate
	}
	c.apply(f, &in, store.Paths())

	a, err := store.UpdateAsset(cur.ID, in)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Updated %q (%s)\n", a.Name, a.ID)
	return subcommands.ExitSuccess
}

type removeAssetCmd struct{ app *App }

func (*removeAssetCmd) Name() string     { return "rm-asset" }
func (*removeAssetCmd) Synopsis() string { return "remove an asset" }
func (*removeAssetCmd) Usage() string {
	return `wealthtrack rm-asset <id>
`
}
func (*removeAssetCmd) SetFlags(*flag.FlagSet) {}

func (c *removeAssetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.app.usage(c, "exactly one asset id is required")
	}
	if err := c.app.Store.RemoveAsset(f.Arg(0)); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Removed asset %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
