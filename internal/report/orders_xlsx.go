package report

import (
	"fmt"
	"io"

	"freightdesk/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ordersSheet     = "Orders"
	dateLayout      = "2006-01-02"
)

var orderHeaders = []interface{}{
	"Ref Number", "Status", "Supplier", "Forwarder", "Order Date",
	"Estimated Delivery", "Items", "Total", "Notes",
}

// WriteOrders renders one row per order into an XLSX workbook written to w.
func WriteOrders(w io.Writer, orders []model.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeaders); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(orderHeaders), 1)
	if err := f.SetCellStyle(ordersSheet, "A1", lastHeader, style); err != nil {
		return err
	}

	for i, o := range orders {
		row := []interface{}{
			o.RefNumber,
			o.Status,
			partyName(o.Supplier),
			partyName(o.Forwarder),
			o.OrderDate.Format(dateLayout),
			"",
			len(o.Items),
			o.Total().StringFixed(2),
			o.Notes,
		}
		if o.EstimatedDeliveryDate != nil {
			row[5] = o.EstimatedDeliveryDate.Format(dateLayout)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(ordersSheet, "A", "A", 20)
	_ = f.SetColWidth(ordersSheet, "C", "D", 30)
	_ = f.SetColWidth(ordersSheet, "E", "F", 18)
	_ = f.SetColWidth(ordersSheet, "I", "I", 50)

	return f.Write(w)
}

func partyName(p interface{}) string {
	switch v := p.(type) {
	case *model.Supplier:
		if v != nil {
			return v.Name
		}
	case *model.Forwarder:
		if v != nil {
			return v.Name
		}
	}
	return ""
}
