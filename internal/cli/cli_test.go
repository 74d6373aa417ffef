package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthtrack/internal/advisor"
	"wealthtrack/internal/logger"
	"wealthtrack/internal/models"
	"wealthtrack/internal/rates"
	"wealthtrack/internal/syncclient"
	"wealthtrack/internal/testutil"
	"wealthtrack/internal/workspace"
)

func init() {
	logger.Init("test")
}

// --- fakes ---

type fakeSync struct {
	healthy    bool
	registered string
	uploads    map[string]*models.Snapshot
	uploadErr  error
	deleted    []string
	calls      []string
}

var _ SyncClient = (*fakeSync)(nil)

func newFakeSync() *fakeSync {
	return &fakeSync{healthy: true, registered: "feedfacecafebeef", uploads: map[string]*models.Snapshot{}}
}

func (f *fakeSync) Register(context.Context) (string, error) {
	f.calls = append(f.calls, "register")
	return f.registered, nil
}

func (f *fakeSync) Upload(_ context.Context, id string, snap *models.Snapshot) (int64, error) {
	f.calls = append(f.calls, "upload")
	if f.uploadErr != nil {
		return 0, f.uploadErr
	}
	stored := *snap
	stored.ServerTimestamp = 1700000000000
	f.uploads[id] = &stored
	return stored.ServerTimestamp, nil
}

func (f *fakeSync) Download(_ context.Context, id string) (*models.Snapshot, error) {
	f.calls = append(f.calls, "download")
	snap, ok := f.uploads[id]
	if !ok {
		return nil, &syncclient.Error{Op: "download", Kind: syncclient.KindNotFound, Status: 404}
	}
	return snap, nil
}

func (f *fakeSync) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSync) HealthCheck(context.Context) bool {
	f.calls = append(f.calls, "health")
	return f.healthy
}

type fakeRates struct {
	quotes   []rates.Quote
	failures []rates.FetchError
}

func (f *fakeRates) Refresh(context.Context, []models.Currency) ([]rates.Quote, []rates.FetchError) {
	return f.quotes, f.failures
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateContent(context.Context, string) (string, error) {
	return f.text, f.err
}

// --- helpers ---

type harness struct {
	app  *App
	out  *bytes.Buffer
	errs *bytes.Buffer
	sync *fakeSync
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := workspace.Open(workspace.NewMemoryPersister())
	require.NoError(t, err)

	h := &harness{out: &bytes.Buffer{}, errs: &bytes.Buffer{}, sync: newFakeSync()}
	h.app = &App{
		Store:  store,
		Sync:   h.sync,
		Rates:  &fakeRates{},
		APIURL: "http://sync.test/api",
		In:     strings.NewReader(""),
		Out:    h.out,
		Err:    h.errs,
		Plain:  true,
	}
	return h
}

func (h *harness) run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	h.out.Reset()
	h.errs.Reset()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func (h *harness) addSampleAssets(t *testing.T) {
	t.Helper()
	st := h.run(t, &addAssetCmd{app: h.app}, "-name", "US Treasury", "-path", "Bond Funds", "-currency", "usd", "-amount", "1000", "-yield", "5")
	require.Equal(t, subcommands.ExitSuccess, st, h.errs.String())
	st = h.run(t, &addAssetCmd{app: h.app}, "-name", "Deposit", "-path", "1", "-amount", "5000", "-yield", "2")
	require.Equal(t, subcommands.ExitSuccess, st, h.errs.String())
}

// --- tests ---

func TestRegister_AllCommandsHaveUniqueNames(t *testing.T) {
	c := subcommands.NewCommander(flag.NewFlagSet("wealthtrack", flag.ContinueOnError), "wealthtrack")
	h := newHarness(t)
	Register(c, h.app)

	seen := map[string]bool{}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		assert.False(t, seen[cmd.Name()], "duplicate command %q", cmd.Name())
		seen[cmd.Name()] = true
	})
	for _, name := range []string{"dashboard", "add-asset", "upload", "download", "advise", "refresh-rates"} {
		assert.True(t, seen[name], "missing command %q", name)
	}
}

func TestUserCommands(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &addUserCmd{app: h.app}, "Joint", "Account"))
	assert.Equal(t, "Joint Account", h.app.Store.ActiveUser().Name)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &useCmd{app: h.app}, "my", "wallet"))
	assert.Equal(t, workspace.DefaultUserID, h.app.Store.ActiveUser().ID)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &usersCmd{app: h.app}))
	assert.Contains(t, h.out.String(), "| * | My Wallet | 0 |")
	assert.Contains(t, h.out.String(), "Joint Account")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &renameUserCmd{app: h.app}, workspace.DefaultUserID, "Main"))
	assert.Equal(t, "Main", h.app.Store.ActiveUser().Name)
}

func TestRemoveUser_LastUserRejected(t *testing.T) {
	h := newHarness(t)

	st := h.run(t, &removeUserCmd{app: h.app}, "-yes", workspace.DefaultUserID)

	assert.Equal(t, subcommands.ExitFailure, st)
	assert.Contains(t, h.errs.String(), "At least one user must be kept")
	assert.Len(t, h.app.Store.Users(), 1)
}

func TestRemoveUser_AsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, subcommands.ExitSuccess, h.run(t, &addUserCmd{app: h.app}, "Second"))
	id := h.app.Store.ActiveUser().ID

	h.app.In = strings.NewReader("n\n")
	require.Equal(t, subcommands.ExitSuccess, h.run(t, &removeUserCmd{app: h.app}, id))
	assert.Len(t, h.app.Store.Users(), 2)

	h.app.In = strings.NewReader("y\n")
	require.Equal(t, subcommands.ExitSuccess, h.run(t, &removeUserCmd{app: h.app}, id))
	assert.Len(t, h.app.Store.Users(), 1)
	assert.Contains(t, h.out.String(), `active user is "My Wallet"`)
}

func TestAddAsset_RealEstateComposite(t *testing.T) {
	h := newHarness(t)

	st := h.run(t, &addAssetCmd{app: h.app},
		"-name", "Flat", "-path", "Domestic Real Estate", "-amount", "3000000",
		"-rental", "3", "-appreciation", "2", "-yield", "99")
	require.Equal(t, subcommands.ExitSuccess, st, h.errs.String())

	assets := h.app.Store.ActiveAssets()
	require.Len(t, assets, 1)
	assert.Equal(t, 5.0, assets[0].AnnualYield)
	assert.Equal(t, "CNY", assets[0].CurrencyCode)
	assert.Contains(t, h.out.String(), "5.00%")
}

func TestAddAsset_Validation(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, subcommands.ExitUsageError, h.run(t, &addAssetCmd{app: h.app}, "-amount", "1"))

	st := h.run(t, &addAssetCmd{app: h.app}, "-name", "X", "-path", "1", "-currency", "EUR", "-amount", "1")
	assert.Equal(t, subcommands.ExitFailure, st)
	assert.Contains(t, h.errs.String(), "Currency not found")
}

func TestEditAsset_OnlyChangesGivenFlags(t *testing.T) {
	h := newHarness(t)
	h.addSampleAssets(t)
	id := h.app.Store.ActiveAssets()[0].ID

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &editAssetCmd{app: h.app}, "-amount", "2000", id))

	a, err := h.app.Store.Asset(id)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, a.Amount)
	assert.Equal(t, "US Treasury", a.Name)
	assert.Equal(t, "USD", a.CurrencyCode)
	assert.Equal(t, 5.0, a.AnnualYield)
}

func TestAssetsAndDashboard(t *testing.T) {
	h := newHarness(t)
	h.addSampleAssets(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &assetsCmd{app: h.app}))
	assert.Contains(t, h.out.String(), "| US Treasury | Bond Funds | $1,000.00 | ¥7,230.00 | 5.00% |")

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &dashboardCmd{app: h.app}))
	out := h.out.String()
	assert.Contains(t, out, "# My Wallet")
	assert.Contains(t, out, "| ¥1.22万 | 3.77% | ¥461.50 |")
	usd := strings.Index(out, "| USD | ¥7,230.00 |")
	cny := strings.Index(out, "| CNY | ¥5,000.00 |")
	require.True(t, usd >= 0 && cny >= 0, out)
	assert.Less(t, usd, cny, "currencies keep first-seen order")
}

func TestDashboard_Empty(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &dashboardCmd{app: h.app}))
	assert.Contains(t, h.out.String(), "| ¥0.00 | 0.00% | ¥0.00 |")
	assert.Contains(t, h.out.String(), "No assets yet.")
}

func TestCurrencyCommands(t *testing.T) {
	h := newHarness(t)
	h.addSampleAssets(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &addCurrencyCmd{app: h.app}, "-symbol", "€", "eur", "7.8"))
	require.Equal(t, subcommands.ExitSuccess, h.run(t, &setRateCmd{app: h.app}, "EUR", "7.9"))
	assert.Contains(t, h.out.String(), "1 EUR = 7.9 CNY")

	assert.Equal(t, subcommands.ExitFailure, h.run(t, &removeCurrencyCmd{app: h.app}, "CNY"))
	assert.Equal(t, subcommands.ExitUsageError, h.run(t, &setRateCmd{app: h.app}, "EUR", "lots"))

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &removeCurrencyCmd{app: h.app}, "usd"))
	assert.Contains(t, h.errs.String(), "1 asset(s) still use USD")
	assert.Len(t, h.app.Store.ActiveAssets(), 2)
}

func TestPathCommands(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &addPathCmd{app: h.app}, "Private", "Equity"))
	assert.Contains(t, h.out.String(), `"Private Equity"`)
	paths := h.app.Store.Paths()
	added := paths[len(paths)-1]
	assert.Equal(t, workspace.DefaultPathIcon, added.Icon)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &renamePathCmd{app: h.app}, added.ID, "PE"))
	require.Equal(t, subcommands.ExitSuccess, h.run(t, &removePathCmd{app: h.app}, added.ID))
	assert.Len(t, h.app.Store.Paths(), len(paths)-1)
}

func TestRefreshRates(t *testing.T) {
	h := newHarness(t)
	h.app.Rates = &fakeRates{
		quotes:   []rates.Quote{{Code: "USD", Rate: 7.1}},
		failures: []rates.FetchError{{Code: "HKD", Err: errors.New("chart error")}},
	}

	st := h.run(t, &refreshRatesCmd{app: h.app})

	assert.Equal(t, subcommands.ExitSuccess, st)
	assert.Contains(t, h.out.String(), "Updated 1 of 2 currencies")
	assert.Contains(t, h.errs.String(), "HKD: chart error")
	for _, c := range h.app.Store.Currencies() {
		switch c.Code {
		case "USD":
			assert.Equal(t, 7.1, c.RateToCNY)
		case "HKD":
			assert.Equal(t, 0.92, c.RateToCNY)
		}
	}
}

func TestRefreshRates_AllFailed(t *testing.T) {
	h := newHarness(t)
	h.app.Rates = &fakeRates{failures: []rates.FetchError{{Code: "USD", Err: errors.New("offline")}}}

	assert.Equal(t, subcommands.ExitFailure, h.run(t, &refreshRatesCmd{app: h.app}))
}

func TestUpload_RegistersOnce(t *testing.T) {
	h := newHarness(t)
	h.addSampleAssets(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &uploadCmd{app: h.app}), h.errs.String())
	assert.Equal(t, []string{"health", "register", "upload"}, h.sync.calls)
	assert.Equal(t, "feedfacecafebeef", h.app.Store.SyncCode())
	assert.Contains(t, h.out.String(), "Registered sync ID feedfacecafebeef")

	h.sync.calls = nil
	require.Equal(t, subcommands.ExitSuccess, h.run(t, &uploadCmd{app: h.app}))
	assert.Equal(t, []string{"health", "upload"}, h.sync.calls)
	assert.Len(t, h.sync.uploads["feedfacecafebeef"].Assets, 2)
}

func TestUpload_ServerDown(t *testing.T) {
	h := newHarness(t)
	h.sync.healthy = false

	assert.Equal(t, subcommands.ExitFailure, h.run(t, &uploadCmd{app: h.app}))
	assert.Equal(t, []string{"health"}, h.sync.calls)
	assert.Contains(t, h.errs.String(), "unreachable")
	assert.Empty(t, h.app.Store.SyncCode())
}

func TestUpload_FailureReported(t *testing.T) {
	h := newHarness(t)
	h.sync.uploadErr = &syncclient.Error{Op: "upload", Kind: syncclient.KindTimeout}

	assert.Equal(t, subcommands.ExitFailure, h.run(t, &uploadCmd{app: h.app}))
	assert.Contains(t, h.errs.String(), "upload: timeout")
}

func TestDownload(t *testing.T) {
	h := newHarness(t)
	snap := testutil.SampleSnapshot()
	snap.Users[0].Name = "From Server"
	h.sync.uploads["abc123"] = snap

	t.Run("declined_leaves_state", func(t *testing.T) {
		h.app.In = strings.NewReader("no\n")
		require.Equal(t, subcommands.ExitSuccess, h.run(t, &downloadCmd{app: h.app}, "-id", "abc123"))
		assert.Equal(t, workspace.DefaultUserName, h.app.Store.ActiveUser().Name)
		assert.Empty(t, h.app.Store.SyncCode())
	})

	t.Run("confirmed_restores", func(t *testing.T) {
		require.Equal(t, subcommands.ExitSuccess, h.run(t, &downloadCmd{app: h.app}, "-id", "abc123", "-yes"))
		assert.Equal(t, "From Server", h.app.Store.ActiveUser().Name)
		assert.Len(t, h.app.Store.ActiveAssets(), 2)
		assert.Equal(t, "abc123", h.app.Store.SyncCode())
	})

	t.Run("missing_snapshot", func(t *testing.T) {
		st := h.run(t, &downloadCmd{app: h.app}, "-id", "nothing", "-yes")
		assert.Equal(t, subcommands.ExitFailure, st)
		assert.Contains(t, h.errs.String(), "upload first")
		assert.Equal(t, "From Server", h.app.Store.ActiveUser().Name)
	})
}

func TestDownload_NoSyncID(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, subcommands.ExitFailure, h.run(t, &downloadCmd{app: h.app}, "-yes"))
	assert.Empty(t, h.sync.calls)
}

func TestForget(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Store.SetSyncCode("abc123"))

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &forgetCmd{app: h.app}, "-yes"))
	assert.Equal(t, []string{"abc123"}, h.sync.deleted)
	assert.Empty(t, h.app.Store.SyncCode())
}

func TestSyncStatus(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, subcommands.ExitSuccess, h.run(t, &syncStatusCmd{app: h.app}))
	assert.Contains(t, h.out.String(), "http://sync.test/api (ok)")
	assert.Contains(t, h.out.String(), "Sync ID: (none)")
}

func TestAdvise(t *testing.T) {
	t.Run("refuses_without_assets", func(t *testing.T) {
		h := newHarness(t)
		called := false
		h.app.Generator = func(context.Context) (advisor.TextGenerator, error) {
			called = true
			return &fakeGenerator{text: "x"}, nil
		}
		assert.Equal(t, subcommands.ExitFailure, h.run(t, &adviseCmd{app: h.app}))
		assert.False(t, called)
	})

	t.Run("prints_advice", func(t *testing.T) {
		h := newHarness(t)
		h.addSampleAssets(t)
		h.app.Generator = func(context.Context) (advisor.TextGenerator, error) {
			return &fakeGenerator{text: "Hold more USD."}, nil
		}
		assert.Equal(t, subcommands.ExitSuccess, h.run(t, &adviseCmd{app: h.app}))
		assert.Contains(t, h.out.String(), "Hold more USD.")
	})

	t.Run("falls_back_without_key", func(t *testing.T) {
		h := newHarness(t)
		h.addSampleAssets(t)
		h.app.Generator = func(context.Context) (advisor.TextGenerator, error) {
			return nil, errors.New("gemini api key is not configured")
		}
		assert.Equal(t, subcommands.ExitFailure, h.run(t, &adviseCmd{app: h.app}))
		assert.Contains(t, h.out.String(), advisor.FallbackMessage)
	})
}
