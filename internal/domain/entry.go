package domain

import (
	"context"
	"time"
)

// Entry 过磅登记单，按 owner 维度隔离，(owner_id, sr_no) 联合唯一
type Entry struct {
	ID          string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	OwnerID     string    `gorm:"type:varchar(32);not null;uniqueIndex:uniq_owner_srno,priority:1;index" json:"-"`
	SrNo        string    `gorm:"size:64;not null;uniqueIndex:uniq_owner_srno,priority:2" json:"srNo"`
	VehicleNo   string    `gorm:"size:32;not null" json:"vehicleNo"`
	NameDetails string    `gorm:"size:255;not null" json:"nameDetails"`
	Date        time.Time `gorm:"not null;index" json:"-"`
	Weight      string    `gorm:"size:64" json:"weight,omitempty"`
	Moisture    string    `gorm:"size:64" json:"moisture,omitempty"`
	GatePassNo  string    `gorm:"size:64" json:"gatePassNo,omitempty"`
	ContactNo   string    `gorm:"size:32" json:"contactNo,omitempty"`
	Unload      string    `gorm:"size:64" json:"unload,omitempty"`
	Shortage    string    `gorm:"size:64" json:"shortage,omitempty"`
	Remarks     string    `gorm:"size:255" json:"remarks,omitempty"`
	Rate        string    `gorm:"size:64" json:"rate,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Entry) TableName() string { return "entries" }

// 列表排序白名单：入参字段名 -> 列名，防字段注入
var entrySortColumns = map[string]string{
	"srNo":        "sr_no",
	"vehicleNo":   "vehicle_no",
	"nameDetails": "name_details",
	"date":        "date",
	"createdAt":   "created_at",
}

// EntrySortColumn 返回白名单内的列名；未命中回落 created_at
func EntrySortColumn(field string) string {
	if col, ok := entrySortColumns[field]; ok {
		return col
	}
	return "created_at"
}

// EntryFilter 类型化查询条件（替代自由拼接的动态查询对象）
type EntryFilter struct {
	OwnerID   string
	Search    string     // 子串匹配 sr_no/vehicle_no/name_details/gate_pass_no/remarks，OR 组合
	StartDate *time.Time // date >= StartDate
	EndDate   *time.Time // date <= EndDate
	SortBy    string     // 白名单字段，见 EntrySortColumn
	SortDesc  bool
	Page      int // 1-based
	Limit     int // [1,100]
}

type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	FindByID(ctx context.Context, id, ownerID string) (*Entry, error)
	ExistsSrNo(ctx context.Context, ownerID, srNo, excludeID string) (bool, error)
	List(ctx context.Context, f EntryFilter) ([]Entry, int64, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id, ownerID string) error
	// AllForExport 导出查询：date desc, created_at desc，可选日期范围
	AllForExport(ctx context.Context, ownerID string, startDate, endDate *time.Time) ([]Entry, error)
}
