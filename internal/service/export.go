package service

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/parkashmi09/entryManagementbackend/internal/domain"
)

const exportSheet = "Entries"

// ExportHeaders 表头与行列序一一对应，导出/回读共用
var ExportHeaders = []string{
	"Sr No", "Vehicle No", "Name / Details", "Date", "Weight", "Moisture",
	"Gate Pass No", "Contact No", "Unload", "Shortage", "Remarks", "Rate", "Created At",
}

func exportRow(e *domain.Entry) []interface{} {
	return []interface{}{
		e.SrNo,
		e.VehicleNo,
		e.NameDetails,
		e.Date.Format(dateLayout),
		e.Weight,
		e.Moisture,
		e.GatePassNo,
		e.ContactNo,
		e.Unload,
		e.Shortage,
		e.Remarks,
		e.Rate,
		e.CreatedAt.Format(time.RFC3339),
	}
}

// BuildWorkbook 单 sheet：一行表头 + 每条记录一行，缺省字段即空串
func BuildWorkbook(items []domain.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i := range items {
		cell := fmt.Sprintf("A%d", i+2)
		row := exportRow(&items[i])
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
