package report

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/brgy-egov/assets-api/internal/domain"
)

var requestColumns = []string{
	"Request ID",
	"Requester",
	"Status",
	"Payment Status",
	"Receipt No.",
	"Total",
	"Amount Paid",
	"Lines",
	"Submitted",
	"Approved",
	"Paid",
}

// BuildRequestsWorkbook renders requests into a one-sheet workbook for the
// treasurer's offline records. One row per request; line detail is flattened
// into a single cell.
func BuildRequestsWorkbook(reqs []domain.AssetRequest) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Requests")
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range requestColumns {
		header.AddCell().SetString(col)
	}

	for _, req := range reqs {
		row := sheet.AddRow()
		row.AddCell().SetString(req.ID)
		row.AddCell().SetString(req.RequesterID)
		row.AddCell().SetString(string(req.Status))
		row.AddCell().SetString(string(req.PaymentStatus))
		if req.ReceiptNumber != nil {
			row.AddCell().SetString(*req.ReceiptNumber)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(req.Total.StringFixed(2))
		if req.PaymentStatus == domain.PaymentStatusPaid {
			row.AddCell().SetString(req.AmountPaid.StringFixed(2))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(flattenItems(req.Items))
		row.AddCell().SetString(req.CreatedAt.Format(time.RFC3339))
		row.AddCell().SetString(formatOptionalTime(req.ApprovedAt))
		row.AddCell().SetString(formatOptionalTime(req.PaidAt))
	}

	return file, nil
}

func flattenItems(items []domain.AssetRequestItem) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s x%d @ %s (%s)", it.AssetID, it.Quantity, it.UnitPrice.StringFixed(2), it.Day.Format(time.DateOnly))
	}
	return out
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
