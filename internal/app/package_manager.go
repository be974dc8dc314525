package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/domain"
)

// PackageManager is the agent's travel package surface.
type PackageManager struct {
	*SearchController[NoFilters, domain.TravelPackage]

	packages domain.PackageAPI
	confirm  Confirmer

	mu      sync.Mutex
	draft   PackageDraft
	create  FormState
	editing int64
	edit    FormState
}

func NewPackageManager(packages domain.PackageAPI, c Confirmer) *PackageManager {
	m := &PackageManager{packages: packages, confirm: c}
	m.SearchController = NewSearchController(SearchConfig[NoFilters, domain.TravelPackage]{
		Name: "my-packages",
		Fetch: func(ctx context.Context, q SearchQuery[NoFilters]) (domain.Page[domain.TravelPackage], error) {
			return m.packages.Mine(ctx, domain.MineQuery{Page: q.Page, Size: q.Size, SortBy: q.SortBy, SortDir: q.SortDir})
		},
		Defaults:   SearchQuery[NoFilters]{SortBy: "updatedAt", SortDir: "desc", Size: 20},
		ErrMessage: "Failed to load your packages",
	})
	return m
}

func (m *PackageManager) SetDraft(d PackageDraft) bool {
	m.mu.Lock()
	m.draft = d
	m.create = FormState{}
	m.mu.Unlock()
	return d.CanSubmit()
}

func (m *PackageManager) Draft() PackageDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

func (m *PackageManager) CreateState() FormState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create
}

func (m *PackageManager) Create(ctx context.Context) (domain.TravelPackage, error) {
	p, err := m.Draft().Payload()
	if err == nil {
		var pkg domain.TravelPackage
		if pkg, err = m.packages.Create(ctx, p); err == nil {
			m.mu.Lock()
			m.draft = PackageDraft{}
			m.create = FormState{OK: "Package created successfully"}
			m.mu.Unlock()
			log.Info().Int64("package_id", pkg.ID).Msg("travel package created")
			return pkg, settled(m.Search(ctx, true))
		}
	}
	m.mu.Lock()
	m.create = FormState{Error: domain.Message(err, "Failed to create package")}
	m.mu.Unlock()
	return domain.TravelPackage{}, err
}

func (m *PackageManager) StartEdit(ctx context.Context, id int64) (PackageDraft, error) {
	p, ok := m.Row(id)
	if !ok {
		var err error
		if p, err = m.packages.Get(ctx, id); err != nil {
			return PackageDraft{}, err
		}
	}
	m.mu.Lock()
	m.editing, m.edit = id, FormState{}
	m.mu.Unlock()
	return EditPackage(p), nil
}

func (m *PackageManager) EditState() (int64, FormState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editing, m.edit
}

// SaveEdit updates the text fields of a package; its photos stay.
func (m *PackageManager) SaveEdit(ctx context.Context, id int64, d PackageDraft) error {
	p, err := d.EditPayload()
	if err == nil {
		_, err = m.packages.Update(ctx, id, p)
	}
	if err != nil {
		m.mu.Lock()
		m.edit = FormState{Error: domain.Message(err, "Failed to update package")}
		m.mu.Unlock()
		return err
	}
	m.CancelEdit()
	return settled(m.Refresh(ctx))
}

func (m *PackageManager) CancelEdit() {
	m.mu.Lock()
	m.editing, m.edit = 0, FormState{}
	m.mu.Unlock()
}

func (m *PackageManager) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := removeRow(ctx, m.SearchController, m.confirm, "Delete this package?",
		func(ctx context.Context) error { return m.packages.Delete(ctx, id) })
	if err != nil {
		return ok, notice(err, "Failed to delete package")
	}
	return ok, nil
}
