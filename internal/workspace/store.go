// Package workspace holds the client's collections of users, assets,
// currencies and investment paths together with the active-user selector.
//
// Every mutation validates the workspace invariants, persists the touched
// keys through a Persister and only then becomes visible. A failed save
// leaves the in-memory state untouched.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	apperrors "wealthtrack/internal/errors"
	"wealthtrack/internal/models"
	"wealthtrack/internal/portfolio"
	"wealthtrack/internal/uuid"
	"wealthtrack/internal/validator"
)

// Storage keys, one per independently serialized part of the workspace.
const (
	KeyUsers      = "wt_users"
	KeyActiveUser = "wt_active_user"
	KeyAssets     = "wt_assets"
	KeyCurrencies = "wt_currencies"
	KeyPaths      = "wt_paths"
	KeySyncCode   = "wt_sync_code"
)

var allKeys = []string{KeyUsers, KeyActiveUser, KeyAssets, KeyCurrencies, KeyPaths, KeySyncCode}

type state struct {
	users        []models.User
	activeUserID string
	assets       []models.Asset
	currencies   []models.Currency
	paths        []models.InvestmentPath
	syncCode     string
}

func (s state) clone() state {
	return state{
		users:        slices.Clone(s.users),
		activeUserID: s.activeUserID,
		assets:       slices.Clone(s.assets),
		currencies:   slices.Clone(s.currencies),
		paths:        slices.Clone(s.paths),
		syncCode:     s.syncCode,
	}
}

// Store is the workspace state container.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	st        state

	now   func() int64
	newID func() string
}

// AssetInput carries the editable fields of an asset. RentalYield and
// AppreciationRate are only used when the target path is a real estate path.
type AssetInput struct {
	Name             string
	PathID           string
	CurrencyCode     string
	Amount           float64
	AnnualYield      float64
	RentalYield      float64
	AppreciationRate float64
	Note             string
	IsDebt           bool
}

// Open reads every workspace key once and fills defaults for keys that were
// never written.
func Open(p Persister) (*Store, error) {
	s := &Store{
		persister: p,
		now:       models.NowMillis,
		newID:     uuid.New,
	}

	st := state{}
	if err := loadJSON(p, KeyUsers, &st.users); err != nil {
		return nil, err
	}
	if err := loadJSON(p, KeyAssets, &st.assets); err != nil {
		return nil, err
	}
	if err := loadJSON(p, KeyCurrencies, &st.currencies); err != nil {
		return nil, err
	}
	if err := loadJSON(p, KeyPaths, &st.paths); err != nil {
		return nil, err
	}
	var err error
	if st.activeUserID, err = loadString(p, KeyActiveUser); err != nil {
		return nil, err
	}
	if st.syncCode, err = loadString(p, KeySyncCode); err != nil {
		return nil, err
	}

	s.st = s.withDefaults(st)
	return s, nil
}

func loadJSON(p Persister, key string, dst any) error {
	raw, err := p.Load(key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func loadString(p Persister, key string) (string, error) {
	raw, err := p.Load(key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return string(raw), nil
}

// withDefaults fills absent collections and repairs the active selector.
func (s *Store) withDefaults(st state) state {
	if len(st.users) == 0 {
		st.users = DefaultUsers(s.now())
	}
	if st.assets == nil {
		st.assets = []models.Asset{}
	}
	if st.currencies == nil {
		st.currencies = DefaultCurrencies()
	}
	if st.paths == nil {
		st.paths = DefaultPaths()
	}
	if st.activeUserID == "" {
		st.activeUserID = DefaultUserID
	}
	if indexOfUser(st.users, st.activeUserID) < 0 {
		st.activeUserID = st.users[0].ID
	}
	return st
}

// commit persists the given keys of next and swaps it in on success.
// Callers must hold s.mu for writing.
func (s *Store) commit(next state, keys ...string) error {
	entries := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := encodeKey(next, k)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		entries[k] = v
	}
	if err := s.persister.Save(entries); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("persist workspace: %w", err))
	}
	s.st = next
	return nil
}

func encodeKey(st state, key string) ([]byte, error) {
	switch key {
	case KeyUsers:
		return json.Marshal(st.users)
	case KeyAssets:
		return json.Marshal(st.assets)
	case KeyCurrencies:
		return json.Marshal(st.currencies)
	case KeyPaths:
		return json.Marshal(st.paths)
	case KeyActiveUser:
		return []byte(st.activeUserID), nil
	case KeySyncCode:
		return []byte(st.syncCode), nil
	}
	return nil, fmt.Errorf("unknown workspace key %q", key)
}

func indexOfUser(users []models.User, id string) int {
	return slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
}

func indexOfAsset(assets []models.Asset, id string) int {
	return slices.IndexFunc(assets, func(a models.Asset) bool { return a.ID == id })
}

func indexOfCurrency(currencies []models.Currency, code string) int {
	return slices.IndexFunc(currencies, func(c models.Currency) bool { return c.Code == code })
}

func indexOfPath(paths []models.InvestmentPath, id string) int {
	return slices.IndexFunc(paths, func(p models.InvestmentPath) bool { return p.ID == id })
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// checkCurrencies enforces the rate table invariants: unique codes, positive
// rates and exactly one home currency rated at 1.
func checkCurrencies(currencies []models.Currency) error {
	seen := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		if seen[c.Code] {
			return apperrors.WithMessage(apperrors.ErrInvalidSnapshot, fmt.Sprintf("currencies: duplicate code %q", c.Code))
		}
		seen[c.Code] = true
		if !validRate(c.RateToCNY) {
			return apperrors.WithMessage(apperrors.ErrInvalidSnapshot, fmt.Sprintf("currencies: %s has an invalid rate", c.Code))
		}
		if c.Code == models.HomeCurrency && c.RateToCNY != 1 {
			return apperrors.WithMessage(apperrors.ErrInvalidSnapshot, "currencies: "+models.HomeCurrency+" must have rate 1")
		}
	}
	if !seen[models.HomeCurrency] {
		return apperrors.WithMessage(apperrors.ErrInvalidSnapshot, "currencies: "+models.HomeCurrency+" is missing")
	}
	return nil
}

// reclassify rewrites the yield components of the assets on pathID after the
// path moved into or out of the real estate class.
func reclassify(assets []models.Asset, pathID string, realEstate bool) {
	for i := range assets {
		a := &assets[i]
		if a.PathID != pathID {
			continue
		}
		if realEstate {
			rental, appreciation := a.AnnualYield, 0.0
			a.RentalYield = &rental
			a.AppreciationRate = &appreciation
		} else {
			a.RentalYield = nil
			a.AppreciationRate = nil
		}
	}
}

// Users returns a copy of the user list.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.users)
}

// ActiveUser returns the currently selected user.
func (s *Store) ActiveUser() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.users[indexOfUser(s.st.users, s.st.activeUserID)]
}

// AddUser creates a user and makes it the active one.
func (s *Store) AddUser(name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "user name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := models.User{ID: s.newID(), Name: name, CreatedAt: s.now()}
	next := s.st.clone()
	next.users = append(next.users, user)
	next.activeUserID = user.ID
	if err := s.commit(next, KeyUsers, KeyActiveUser); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// RenameUser changes the display name of a user.
func (s *Store) RenameUser(id, name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "user name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfUser(s.st.users, id)
	if i < 0 {
		return models.User{}, apperrors.ErrUserNotFound
	}
	next := s.st.clone()
	next.users[i].Name = name
	if err := s.commit(next, KeyUsers); err != nil {
		return models.User{}, err
	}
	return next.users[i], nil
}

// RemoveUser deletes a user and every asset it owns. The last remaining user
// cannot be removed. Removing the active user selects the first remaining one.
func (s *Store) RemoveUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfUser(s.st.users, id)
	if i < 0 {
		return apperrors.ErrUserNotFound
	}
	if len(s.st.users) <= 1 {
		return apperrors.ErrLastUser
	}

	next := s.st.clone()
	next.users = slices.Delete(next.users, i, i+1)
	next.assets = slices.DeleteFunc(next.assets, func(a models.Asset) bool { return a.UserID == id })
	if next.activeUserID == id {
		next.activeUserID = next.users[0].ID
	}
	return s.commit(next, KeyUsers, KeyAssets, KeyActiveUser)
}

// SetActiveUser selects the user whose portfolio is shown and edited.
func (s *Store) SetActiveUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOfUser(s.st.users, id) < 0 {
		return apperrors.ErrUserNotFound
	}
	next := s.st.clone()
	next.activeUserID = id
	return s.commit(next, KeyActiveUser)
}

// Assets returns a copy of every asset in the workspace.
func (s *Store) Assets() []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.assets)
}

// ActiveAssets returns the assets owned by the active user.
func (s *Store) ActiveAssets() []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return portfolio.ForUser(s.st.assets, s.st.activeUserID)
}

// Asset returns the asset with the given id.
func (s *Store) Asset(id string) (models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOfAsset(s.st.assets, id)
	if i < 0 {
		return models.Asset{}, apperrors.ErrAssetNotFound
	}
	return s.st.assets[i], nil
}

// applyInput validates in against the current tables and copies it onto a.
// Real estate assets get annualYield = rentalYield + appreciationRate.
func (s *Store) applyInput(a *models.Asset, in AssetInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset name is required")
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset amount must be a finite number")
	}
	pi := indexOfPath(s.st.paths, in.PathID)
	if pi < 0 {
		return apperrors.ErrPathNotFound
	}
	code := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if indexOfCurrency(s.st.currencies, code) < 0 {
		return apperrors.ErrCurrencyNotFound
	}

	a.Name = name
	a.PathID = in.PathID
	a.CurrencyCode = code
	a.Amount = in.Amount
	a.Note = strings.TrimSpace(in.Note)
	a.IsDebt = in.IsDebt
	if s.st.paths[pi].IsRealEstate() {
		rental, appreciation := in.RentalYield, in.AppreciationRate
		a.RentalYield = &rental
		a.AppreciationRate = &appreciation
		a.AnnualYield = rental + appreciation
	} else {
		a.RentalYield = nil
		a.AppreciationRate = nil
		a.AnnualYield = in.AnnualYield
	}
	return nil
}

// AddAsset creates an asset owned by the active user.
func (s *Store) AddAsset(in AssetInput) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := models.Asset{ID: s.newID(), UserID: s.st.activeUserID, CreatedAt: s.now()}
	if err := s.applyInput(&a, in); err != nil {
		return models.Asset{}, err
	}
	next := s.st.clone()
	next.assets = append(next.assets, a)
	if err := s.commit(next, KeyAssets); err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

// UpdateAsset replaces the editable fields of an asset. Owner and creation
// time are preserved.
func (s *Store) UpdateAsset(id string, in AssetInput) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfAsset(s.st.assets, id)
	if i < 0 {
		return models.Asset{}, apperrors.ErrAssetNotFound
	}
	a := s.st.assets[i]
	if err := s.applyInput(&a, in); err != nil {
		return models.Asset{}, err
	}
	next := s.st.clone()
	next.assets[i] = a
	if err := s.commit(next, KeyAssets); err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

// RemoveAsset deletes an asset.
func (s *Store) RemoveAsset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfAsset(s.st.assets, id)
	if i < 0 {
		return apperrors.ErrAssetNotFound
	}
	next := s.st.clone()
	next.assets = slices.Delete(next.assets, i, i+1)
	return s.commit(next, KeyAssets)
}

// Currencies returns a copy of the exchange-rate table.
func (s *Store) Currencies() []models.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.currencies)
}

// AddCurrency appends a currency. The code is upper-cased and an empty symbol
// defaults to the code.
func (s *Store) AddCurrency(code, symbol string, rate float64) (models.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.Currency{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency code is required")
	}
	if !validator.IsCurrencyCode(code) {
		return models.Currency{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency code must be 2-10 letters or digits")
	}
	if !validRate(rate) {
		return models.Currency{}, apperrors.ErrInvalidRate
	}
	if code == models.HomeCurrency && rate != 1 {
		return models.Currency{}, apperrors.ErrHomeCurrency
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = code
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOfCurrency(s.st.currencies, code) >= 0 {
		return models.Currency{}, apperrors.ErrDuplicateCurrency
	}
	c := models.Currency{Code: code, Symbol: symbol, RateToCNY: rate}
	next := s.st.clone()
	next.currencies = append(next.currencies, c)
	if err := s.commit(next, KeyCurrencies); err != nil {
		return models.Currency{}, err
	}
	return c, nil
}

// SetCurrencyRate updates the rate of a non-home currency.
func (s *Store) SetCurrencyRate(code string, rate float64) (models.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == models.HomeCurrency {
		return models.Currency{}, apperrors.ErrHomeCurrency
	}
	if !validRate(rate) {
		return models.Currency{}, apperrors.ErrInvalidRate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfCurrency(s.st.currencies, code)
	if i < 0 {
		return models.Currency{}, apperrors.ErrCurrencyNotFound
	}
	next := s.st.clone()
	next.currencies[i].RateToCNY = rate
	if err := s.commit(next, KeyCurrencies); err != nil {
		return models.Currency{}, err
	}
	return next.currencies[i], nil
}

// RemoveCurrency deletes a currency. Assets referencing it are kept and fall
// back to the first currency of the table when valued.
func (s *Store) RemoveCurrency(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == models.HomeCurrency {
		return apperrors.ErrHomeCurrency
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfCurrency(s.st.currencies, code)
	if i < 0 {
		return apperrors.ErrCurrencyNotFound
	}
	next := s.st.clone()
	next.currencies = slices.Delete(next.currencies, i, i+1)
	return s.commit(next, KeyCurrencies)
}

// Paths returns a copy of the investment path table.
func (s *Store) Paths() []models.InvestmentPath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.paths)
}

// AddPath appends an investment path. Icon defaults to DefaultPathIcon.
func (s *Store) AddPath(name, icon string) (models.InvestmentPath, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.InvestmentPath{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "path name is required")
	}
	icon = strings.TrimSpace(icon)
	if icon == "" {
		icon = DefaultPathIcon
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.InvestmentPath{ID: s.newID(), Name: name, Icon: icon}
	next := s.st.clone()
	next.paths = append(next.paths, p)
	if err := s.commit(next, KeyPaths); err != nil {
		return models.InvestmentPath{}, err
	}
	return p, nil
}

// RenamePath changes a path name. When the rename moves the path into or out
// of the real estate class its assets are reclassified: leaving keeps the
// annual yield and drops the components, entering books the whole annual
// yield as rental yield.
func (s *Store) RenamePath(id, name string) (models.InvestmentPath, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.InvestmentPath{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "path name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfPath(s.st.paths, id)
	if i < 0 {
		return models.InvestmentPath{}, apperrors.ErrPathNotFound
	}
	wasRealEstate := s.st.paths[i].IsRealEstate()
	next := s.st.clone()
	next.paths[i].Name = name
	keys := []string{KeyPaths}
	if isRealEstate := next.paths[i].IsRealEstate(); isRealEstate != wasRealEstate {
		reclassify(next.assets, id, isRealEstate)
		keys = append(keys, KeyAssets)
	}
	if err := s.commit(next, keys...); err != nil {
		return models.InvestmentPath{}, err
	}
	return next.paths[i], nil
}

// RemovePath deletes a path. Assets referencing it are kept and grouped as
// models.UnknownPath.
func (s *Store) RemovePath(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfPath(s.st.paths, id)
	if i < 0 {
		return apperrors.ErrPathNotFound
	}
	next := s.st.clone()
	next.paths = slices.Delete(next.paths, i, i+1)
	return s.commit(next, KeyPaths)
}

// Stats computes the active user's portfolio statistics.
func (s *Store) Stats() models.PortfolioStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return portfolio.Compute(portfolio.ForUser(s.st.assets, s.st.activeUserID), s.st.currencies, s.st.paths)
}

// Snapshot serializes the whole workspace for upload.
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.Snapshot{
		Users:        slices.Clone(s.st.users),
		Assets:       slices.Clone(s.st.assets),
		Currencies:   slices.Clone(s.st.currencies),
		Paths:        slices.Clone(s.st.paths),
		ActiveUserID: s.st.activeUserID,
		Version:      models.SnapshotVersion,
	}
}

// Restore replaces every collection with the snapshot contents. Missing
// collections fall back to the defaults and the sync code is kept. A currency
// table without the home currency at rate 1 is rejected.
func (s *Store) Restore(snap *models.Snapshot) error {
	if snap == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidSnapshot, "snapshot is empty")
	}
	if snap.Currencies != nil {
		if err := checkCurrencies(snap.Currencies); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.withDefaults(state{
		users:        slices.Clone(snap.Users),
		activeUserID: snap.ActiveUserID,
		assets:       slices.Clone(snap.Assets),
		currencies:   slices.Clone(snap.Currencies),
		paths:        slices.Clone(snap.Paths),
		syncCode:     s.st.syncCode,
	})
	return s.commit(next, KeyUsers, KeyActiveUser, KeyAssets, KeyCurrencies, KeyPaths)
}

// SyncCode returns the saved sync identifier, or "" when none is registered.
func (s *Store) SyncCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.syncCode
}

// SetSyncCode saves the sync identifier. An empty code forgets it.
func (s *Store) SetSyncCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	next.syncCode = strings.TrimSpace(code)
	return s.commit(next, KeySyncCode)
}

// Flush writes every key, including ones still holding defaults.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.st.clone(), allKeys...)
}
