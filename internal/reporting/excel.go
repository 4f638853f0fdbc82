package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportExcel writes the journal to an xlsx workbook with one sheet of
// trades and a summary block.
func (j *Journal) ExportExcel(path string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	const sheet = "Trades"
	f.SetSheetName("Sheet1", sheet) //nolint:errcheck

	headers := []string{"Symbol", "Side", "Entry", "Exit", "Quantity", "PnL", "Profit %", "Reason", "Holding Time", "Closed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	trades := j.Trades()
	for row, trade := range trades {
		values := []interface{}{
			trade.Symbol,
			trade.Side.String(),
			trade.Entry,
			trade.Exit,
			trade.Quantity,
			trade.PnL,
			trade.ProfitPct,
			trade.Reason.String(),
			trade.HoldingTime.String(),
			trade.ClosedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write trade row: %w", err)
			}
		}
	}

	summary := j.Summarize()
	base := len(trades) + 3
	summaryRows := [][2]interface{}{
		{"Total Trades", summary.TotalTrades},
		{"Wins", summary.Wins},
		{"Losses", summary.Losses},
		{"Win Rate", summary.WinRate},
		{"Net PnL", summary.NetPnL},
	}
	for i, pair := range summaryRows {
		keyCell, _ := excelize.CoordinatesToCellName(1, base+i)
		valCell, _ := excelize.CoordinatesToCellName(2, base+i)
		f.SetCellValue(sheet, keyCell, pair[0]) //nolint:errcheck
		f.SetCellValue(sheet, valCell, pair[1]) //nolint:errcheck
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
