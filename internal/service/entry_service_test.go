package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkashmi09/entryManagementbackend/internal/domain"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

// fakeEntryRepo 内存实现，语义对齐 gorm 版（含唯一索引仲裁）
type fakeEntryRepo struct {
	items []domain.Entry
}

func (f *fakeEntryRepo) Create(_ context.Context, e *domain.Entry) error {
	for i := range f.items {
		if f.items[i].OwnerID == e.OwnerID && f.items[i].SrNo == e.SrNo {
			return domain.ErrDuplicateKey
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
		e.UpdatedAt = e.CreatedAt
	}
	f.items = append(f.items, *e)
	return nil
}

func (f *fakeEntryRepo) FindByID(_ context.Context, id, ownerID string) (*domain.Entry, error) {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].OwnerID == ownerID {
			e := f.items[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEntryRepo) ExistsSrNo(_ context.Context, ownerID, srNo, excludeID string) (bool, error) {
	for i := range f.items {
		if f.items[i].OwnerID == ownerID && f.items[i].SrNo == srNo && f.items[i].ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEntryRepo) matches(e *domain.Entry, fl domain.EntryFilter) bool {
	if e.OwnerID != fl.OwnerID {
		return false
	}
	if fl.StartDate != nil && e.Date.Before(*fl.StartDate) {
		return false
	}
	if fl.EndDate != nil && e.Date.After(*fl.EndDate) {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(fl.Search)); s != "" {
		hay := strings.ToLower(strings.Join([]string{
			e.SrNo, e.VehicleNo, e.NameDetails, e.GatePassNo, e.Remarks,
		}, "\x00"))
		if !strings.Contains(hay, s) {
			return false
		}
	}
	return true
}

func (f *fakeEntryRepo) List(_ context.Context, fl domain.EntryFilter) ([]domain.Entry, int64, error) {
	var all []domain.Entry
	for i := range f.items {
		if f.matches(&f.items[i], fl) {
			all = append(all, f.items[i])
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		var less bool
		switch domain.EntrySortColumn(fl.SortBy) {
		case "sr_no":
			less = all[i].SrNo < all[j].SrNo
		case "vehicle_no":
			less = all[i].VehicleNo < all[j].VehicleNo
		case "name_details":
			less = all[i].NameDetails < all[j].NameDetails
		case "date":
			less = all[i].Date.Before(all[j].Date)
		default:
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		if fl.SortDesc {
			return !less
		}
		return less
	})
	total := int64(len(all))
	start := (fl.Page - 1) * fl.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + fl.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeEntryRepo) Update(_ context.Context, e *domain.Entry) error {
	for i := range f.items {
		if f.items[i].ID != e.ID && f.items[i].OwnerID == e.OwnerID && f.items[i].SrNo == e.SrNo {
			return domain.ErrDuplicateKey
		}
	}
	for i := range f.items {
		if f.items[i].ID == e.ID {
			e.UpdatedAt = time.Now()
			f.items[i] = *e
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeEntryRepo) Delete(_ context.Context, id, ownerID string) error {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].OwnerID == ownerID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeEntryRepo) AllForExport(_ context.Context, ownerID string, start, end *time.Time) ([]domain.Entry, error) {
	fl := domain.EntryFilter{OwnerID: ownerID, StartDate: start, EndDate: end}
	var all []domain.Entry
	for i := range f.items {
		if f.matches(&f.items[i], fl) {
			all = append(all, f.items[i])
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

var _ domain.EntryRepository = (*fakeEntryRepo)(nil)

func newTestEntryService(f *fakeEntryRepo, now time.Time) *entryService {
	return &entryService{repo: f, now: func() time.Time { return now }}
}

func TestEntryCreate_NormalizesAndDefaults(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestEntryService(&fakeEntryRepo{}, now)

	out, err := s.Create(context.Background(), "owner1", CreateEntryRequest{
		SrNo:        "1",
		VehicleNo:   "mh01ab1234",
		NameDetails: "T",
	})
	require.NoError(t, err)
	assert.Equal(t, "MH01AB1234", out.VehicleNo)
	assert.Equal(t, "2025-03-10", out.Date)
}

func TestEntryCreate_OwnerScopedUniqueness(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", CreateEntryRequest{SrNo: "1", VehicleNo: "a", NameDetails: "x"})
	require.NoError(t, err)

	// 不同 owner 可以复用同一 srNo
	_, err = s.Create(ctx, "u2", CreateEntryRequest{SrNo: "1", VehicleNo: "a", NameDetails: "x"})
	require.NoError(t, err)

	// 同一 owner 重复 → 409
	_, err = s.Create(ctx, "u1", CreateEntryRequest{SrNo: "1", VehicleNo: "b", NameDetails: "y"})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.From(err).Status)
}

func TestEntryGet_OwnershipIndistinguishableFromMissing(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", CreateEntryRequest{SrNo: "1", VehicleNo: "a", NameDetails: "x"})
	require.NoError(t, err)

	_, errOther := s.Get(ctx, "u2", created.ID)
	_, errGhost := s.Get(ctx, "u2", "no-such-id")

	require.Error(t, errOther)
	require.Error(t, errGhost)
	assert.Equal(t, apperr.From(errGhost).Status, apperr.From(errOther).Status)
	assert.Equal(t, apperr.From(errGhost).Error(), apperr.From(errOther).Error())
}

func TestEntryList_PaginationLaw(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	ctx := context.Background()

	const n = 25
	for i := 0; i < n; i++ {
		_, err := s.Create(ctx, "u1", CreateEntryRequest{
			SrNo:        fmt.Sprintf("%03d", i),
			VehicleNo:   "v",
			NameDetails: "x",
		})
		require.NoError(t, err)
	}

	const limit = 10
	var collected []string
	page := 1
	for {
		out, err := s.List(ctx, "u1", ListEntriesQuery{
			Page: page, Limit: limit, SortBy: "srNo", SortOrder: "asc",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(n), out.Total)
		if len(out.Items) == 0 {
			break
		}
		for _, it := range out.Items {
			collected = append(collected, it.SrNo)
		}
		page++
	}

	// pages = ceil(n/limit)，拼接完整且有序无重复
	assert.Equal(t, 4, page) // 走了 3 页数据 + 1 页空
	require.Len(t, collected, n)
	assert.True(t, sort.StringsAreSorted(collected))
	seen := map[string]struct{}{}
	for _, s := range collected {
		seen[s] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestEntryList_ClampsLimit(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	out, err := s.List(context.Background(), "u1", ListEntriesQuery{Page: 0, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 100, out.Limit)
}

func TestEntryUpdate_SrNoRecheck(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	ctx := context.Background()

	a, err := s.Create(ctx, "u1", CreateEntryRequest{SrNo: "1", VehicleNo: "a", NameDetails: "x"})
	require.NoError(t, err)
	b, err := s.Create(ctx, "u1", CreateEntryRequest{SrNo: "2", VehicleNo: "b", NameDetails: "y"})
	require.NoError(t, err)

	// 改成已占用的 srNo → 409
	_, err = s.Update(ctx, "u1", b.ID, UpdateEntryRequest{SrNo: "1"})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.From(err).Status)

	// 改成空闲的 srNo，且只合并提供的字段
	out, err := s.Update(ctx, "u1", b.ID, UpdateEntryRequest{SrNo: "3", Weight: "12.5"})
	require.NoError(t, err)
	assert.Equal(t, "3", out.SrNo)
	assert.Equal(t, "12.5", out.Weight)
	assert.Equal(t, "B", out.VehicleNo)

	// 原记录不受影响
	got, err := s.Get(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", got.SrNo)
}

func TestEntryDelete_OwnershipEnforced(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", CreateEntryRequest{SrNo: "1", VehicleNo: "a", NameDetails: "x"})
	require.NoError(t, err)

	err = s.Delete(ctx, "u2", created.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status)

	require.NoError(t, s.Delete(ctx, "u1", created.ID))
	_, err = s.Get(ctx, "u1", created.ID)
	require.Error(t, err)
}

func TestEntryExport_EmptyIsNotFound(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	_, err := s.ExportAll(context.Background(), "u1")
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, 404, ae.Status)
	assert.Equal(t, "No entries found for export", ae.Error())
}

func TestEntryExport_FilenameEmbedsDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestEntryService(&fakeEntryRepo{}, now)
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", CreateEntryRequest{SrNo: "1", VehicleNo: "a", NameDetails: "x"})
	require.NoError(t, err)

	f, err := s.ExportAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "entries-2025-03-10.xlsx", f.Filename)
	assert.NotEmpty(t, f.Content)
}

func TestEntryList_DateRangeFilter(t *testing.T) {
	s := newTestEntryService(&fakeEntryRepo{}, time.Now())
	ctx := context.Background()

	for i, d := range []string{"2025-01-01", "2025-01-15", "2025-02-01"} {
		_, err := s.Create(ctx, "u1", CreateEntryRequest{
			SrNo: fmt.Sprintf("%d", i), VehicleNo: "v", NameDetails: "x", Date: d,
		})
		require.NoError(t, err)
	}

	out, err := s.List(ctx, "u1", ListEntriesQuery{
		Page: 1, Limit: 10, StartDate: "2025-01-10", EndDate: "2025-01-31",
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "2025-01-15", out.Items[0].Date)
}
