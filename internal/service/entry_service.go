package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/parkashmi09/entryManagementbackend/internal/domain"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
	"github.com/parkashmi09/entryManagementbackend/pkg/utils"
)

const dateLayout = "2006-01-02"

type CreateEntryRequest struct {
	SrNo        string `json:"srNo" binding:"required,max=64"`
	VehicleNo   string `json:"vehicleNo" binding:"required,max=32"`
	NameDetails string `json:"nameDetails" binding:"required,max=255"`
	Date        string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Weight      string `json:"weight" binding:"omitempty,max=64"`
	Moisture    string `json:"moisture" binding:"omitempty,max=64"`
	GatePassNo  string `json:"gatePassNo" binding:"omitempty,max=64"`
	ContactNo   string `json:"contactNo" binding:"omitempty,max=32"`
	Unload      string `json:"unload" binding:"omitempty,max=64"`
	Shortage    string `json:"shortage" binding:"omitempty,max=64"`
	Remarks     string `json:"remarks" binding:"omitempty,max=255"`
	Rate        string `json:"rate" binding:"omitempty,max=64"`
}

type UpdateEntryRequest struct {
	SrNo        string `json:"srNo" binding:"omitempty,max=64"`
	VehicleNo   string `json:"vehicleNo" binding:"omitempty,max=32"`
	NameDetails string `json:"nameDetails" binding:"omitempty,max=255"`
	Date        string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Weight      string `json:"weight" binding:"omitempty,max=64"`
	Moisture    string `json:"moisture" binding:"omitempty,max=64"`
	GatePassNo  string `json:"gatePassNo" binding:"omitempty,max=64"`
	ContactNo   string `json:"contactNo" binding:"omitempty,max=32"`
	Unload      string `json:"unload" binding:"omitempty,max=64"`
	Shortage    string `json:"shortage" binding:"omitempty,max=64"`
	Remarks     string `json:"remarks" binding:"omitempty,max=255"`
	Rate        string `json:"rate" binding:"omitempty,max=64"`
}

type ListEntriesQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"` // "asc" / "desc"（默认 desc）
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

type EntryResponse struct {
	ID          string `json:"id"`
	SrNo        string `json:"srNo"`
	VehicleNo   string `json:"vehicleNo"`
	NameDetails string `json:"nameDetails"`
	Date        string `json:"date"`
	Weight      string `json:"weight,omitempty"`
	Moisture    string `json:"moisture,omitempty"`
	GatePassNo  string `json:"gatePassNo,omitempty"`
	ContactNo   string `json:"contactNo,omitempty"`
	Unload      string `json:"unload,omitempty"`
	Shortage    string `json:"shortage,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
	Rate        string `json:"rate,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type EntryPage struct {
	Items []EntryResponse
	Page  int
	Limit int
	Total int64
}

type ExportFile struct {
	Filename string
	Content  []byte
}

type EntryService interface {
	Create(ctx context.Context, ownerID string, req CreateEntryRequest) (*EntryResponse, error)
	List(ctx context.Context, ownerID string, q ListEntriesQuery) (*EntryPage, error)
	Get(ctx context.Context, ownerID, id string) (*EntryResponse, error)
	Update(ctx context.Context, ownerID, id string, req UpdateEntryRequest) (*EntryResponse, error)
	Delete(ctx context.Context, ownerID, id string) error
	// Export 可选日期范围；ExportAll 整表导出
	Export(ctx context.Context, ownerID, startDate, endDate string) (*ExportFile, error)
	ExportAll(ctx context.Context, ownerID string) (*ExportFile, error)
}

type entryService struct {
	repo domain.EntryRepository
	now  func() time.Time
}

func NewEntryService(repo domain.EntryRepository) EntryService {
	return &entryService{repo: repo, now: time.Now}
}

func mapEntry(e *domain.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		SrNo:        e.SrNo,
		VehicleNo:   e.VehicleNo,
		NameDetails: e.NameDetails,
		Date:        e.Date.Format(dateLayout),
		Weight:      e.Weight,
		Moisture:    e.Moisture,
		GatePassNo:  e.GatePassNo,
		ContactNo:   e.ContactNo,
		Unload:      e.Unload,
		Shortage:    e.Shortage,
		Remarks:     e.Remarks,
		Rate:        e.Rate,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *entryService) Create(ctx context.Context, ownerID string, req CreateEntryRequest) (*EntryResponse, error) {
	srNo := strings.TrimSpace(req.SrNo)

	// 预检给出友好报错；(owner_id, sr_no) 唯一索引兜底并发
	if dup, err := s.repo.ExistsSrNo(ctx, ownerID, srNo, ""); err != nil {
		return nil, apperr.Internal("create entry failed", err)
	} else if dup {
		return nil, apperr.Conflict("Entry with this sr no already exists")
	}

	date := s.now()
	if req.Date != "" {
		date, _ = time.Parse(dateLayout, req.Date)
	}

	e := &domain.Entry{
		ID:          utils.NewID(),
		OwnerID:     ownerID,
		SrNo:        srNo,
		VehicleNo:   strings.ToUpper(strings.TrimSpace(req.VehicleNo)),
		NameDetails: strings.TrimSpace(req.NameDetails),
		Date:        date,
		Weight:      req.Weight,
		Moisture:    req.Moisture,
		GatePassNo:  req.GatePassNo,
		ContactNo:   req.ContactNo,
		Unload:      req.Unload,
		Shortage:    req.Shortage,
		Remarks:     req.Remarks,
		Rate:        req.Rate,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, apperr.Conflict("Entry with this sr no already exists")
		}
		return nil, apperr.Internal("create entry failed", err)
	}
	out := mapEntry(e)
	return &out, nil
}

func (s *entryService) List(ctx context.Context, ownerID string, q ListEntriesQuery) (*EntryPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	f := domain.EntryFilter{
		OwnerID:  ownerID,
		Search:   q.Search,
		SortBy:   q.SortBy,
		SortDesc: strings.ToLower(q.SortOrder) != "asc",
		Page:     q.Page,
		Limit:    q.Limit,
	}
	var err error
	if f.StartDate, f.EndDate, err = parseDateRange(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list entries failed", err)
	}
	out := make([]EntryResponse, 0, len(items))
	for i := range items {
		out = append(out, mapEntry(&items[i]))
	}
	return &EntryPage{Items: out, Page: q.Page, Limit: q.Limit, Total: total}, nil
}

func (s *entryService) Get(ctx context.Context, ownerID, id string) (*EntryResponse, error) {
	e, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	out := mapEntry(e)
	return &out, nil
}

func (s *entryService) Update(ctx context.Context, ownerID, id string, req UpdateEntryRequest) (*EntryResponse, error) {
	e, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if srNo := strings.TrimSpace(req.SrNo); srNo != "" && srNo != e.SrNo {
		if dup, err := s.repo.ExistsSrNo(ctx, ownerID, srNo, e.ID); err != nil {
			return nil, apperr.Internal("update entry failed", err)
		} else if dup {
			return nil, apperr.Conflict("Entry with this sr no already exists")
		}
		e.SrNo = srNo
	}
	if req.VehicleNo != "" {
		e.VehicleNo = strings.ToUpper(strings.TrimSpace(req.VehicleNo))
	}
	if req.NameDetails != "" {
		e.NameDetails = strings.TrimSpace(req.NameDetails)
	}
	if req.Date != "" {
		e.Date, _ = time.Parse(dateLayout, req.Date)
	}
	if req.Weight != "" {
		e.Weight = req.Weight
	}
	if req.Moisture != "" {
		e.Moisture = req.Moisture
	}
	if req.GatePassNo != "" {
		e.GatePassNo = req.GatePassNo
	}
	if req.ContactNo != "" {
		e.ContactNo = req.ContactNo
	}
	if req.Unload != "" {
		e.Unload = req.Unload
	}
	if req.Shortage != "" {
		e.Shortage = req.Shortage
	}
	if req.Remarks != "" {
		e.Remarks = req.Remarks
	}
	if req.Rate != "" {
		e.Rate = req.Rate
	}

	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, apperr.Conflict("Entry with this sr no already exists")
		}
		return nil, apperr.Internal("update entry failed", err)
	}
	out := mapEntry(e)
	return &out, nil
}

func (s *entryService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.NotFound("Entry not found")
		}
		return apperr.Internal("delete entry failed", err)
	}
	return nil
}

func (s *entryService) Export(ctx context.Context, ownerID, startDate, endDate string) (*ExportFile, error) {
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.export(ctx, ownerID, start, end)
}

func (s *entryService) ExportAll(ctx context.Context, ownerID string) (*ExportFile, error) {
	return s.export(ctx, ownerID, nil, nil)
}

func (s *entryService) export(ctx context.Context, ownerID string, start, end *time.Time) (*ExportFile, error) {
	items, err := s.repo.AllForExport(ctx, ownerID, start, end)
	if err != nil {
		return nil, apperr.Internal("export entries failed", err)
	}
	if len(items) == 0 {
		return nil, apperr.NotFound("No entries found for export")
	}
	content, err := BuildWorkbook(items)
	if err != nil {
		return nil, apperr.Internal("build workbook failed", err)
	}
	return &ExportFile{
		Filename: "entries-" + s.now().Format(dateLayout) + ".xlsx",
		Content:  content,
	}, nil
}

func (s *entryService) find(ctx context.Context, ownerID, id string) (*domain.Entry, error) {
	e, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		// 他人记录与不存在一视同仁，避免暴露存在性
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Entry not found")
		}
		return nil, apperr.Internal("load entry failed", err)
	}
	return e, nil
}

// parseDateRange startDate 取当日 0 点，endDate 含当日全天
func parseDateRange(startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startDate != "" {
		t, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, nil, apperr.BadRequest("Invalid startDate, expected YYYY-MM-DD")
		}
		start = &t
	}
	if endDate != "" {
		t, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, nil, apperr.BadRequest("Invalid endDate, expected YYYY-MM-DD")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	return start, end, nil
}
