package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/parkashmi09/entryManagementbackend/internal/domain"
)

type EntryRepo struct{ db *gorm.DB }

func NewEntryRepo(db *gorm.DB) *EntryRepo { return &EntryRepo{db: db} }

var _ domain.EntryRepository = (*EntryRepo)(nil)

func (r *EntryRepo) Create(ctx context.Context, e *domain.Entry) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

func (r *EntryRepo) FindByID(ctx context.Context, id, ownerID string) (*domain.Entry, error) {
	var e domain.Entry
	// id + owner_id 双条件：他人记录与不存在同样返回 ErrNotFound
	err := r.db.WithContext(ctx).First(&e, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *EntryRepo) ExistsSrNo(ctx context.Context, ownerID, srNo, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Entry{}).
		Where("owner_id = ? AND sr_no = ?", ownerID, srNo)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *EntryRepo) List(ctx context.Context, f domain.EntryFilter) ([]domain.Entry, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Entry{}).Where("owner_id = ?", f.OwnerID)
	q = applyDateRange(q, f.StartDate, f.EndDate)
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(sr_no) LIKE ? OR LOWER(vehicle_no) LIKE ? OR LOWER(name_details) LIKE ? OR LOWER(gate_pass_no) LIKE ? OR LOWER(remarks) LIKE ?",
			like, like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	var items []domain.Entry
	err := q.Order(domain.EntrySortColumn(f.SortBy) + " " + dir).
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *EntryRepo) Update(ctx context.Context, e *domain.Entry) error {
	return translate(r.db.WithContext(ctx).Save(e).Error)
}

func (r *EntryRepo) Delete(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Entry{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EntryRepo) AllForExport(ctx context.Context, ownerID string, startDate, endDate *time.Time) ([]domain.Entry, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	q = applyDateRange(q, startDate, endDate)
	var items []domain.Entry
	if err := q.Order("date DESC, created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func applyDateRange(q *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}
	return q
}
