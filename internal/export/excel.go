// Package export writes analyzed deals out to spreadsheet files.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"flipfinder/internal/models"
)

const sheetName = "Deal Analysis"

// ROI bands for the cell fill colors.
const (
	roiGreenThreshold  = 30
	roiYellowThreshold = 20
)

var columns = []string{
	"Score",
	"Address",
	"List Price",
	"ARV",
	"Repair Costs",
	"Closing Costs",
	"Holding Costs",
	"Total Investment",
	"Profit",
	"ROI (%)",
	"Max Purchase Price (70% Rule)",
	"Meets 70% Rule",
	"DOM",
	"Bedrooms",
	"Bathrooms",
	"Square Feet",
	"Year Built",
	"Price/SqFt",
}

// ExcelExporter writes deals to an xlsx workbook with one row per deal,
// styled headers, and ROI cells colored by band.
type ExcelExporter struct {
	logger *logrus.Logger
}

func NewExcelExporter(logger *logrus.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export writes the deals to the given path, creating parent directories
// as needed. Deals are written in the order given.
func (e *ExcelExporter) Export(deals []*models.Deal, outputFile string) error {
	if len(deals) == 0 {
		e.logger.Warn("No deals to export")
		return fmt.Errorf("no deals to export")
	}

	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"CCCCCC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	roiStyles, err := e.roiStyles(f)
	if err != nil {
		return err
	}

	for row, deal := range deals {
		values := []any{
			deal.Score,
			deal.Address,
			deal.ListPrice,
			deal.ARV,
			deal.RepairCosts,
			deal.ClosingCosts.Total,
			deal.HoldingCosts,
			deal.TotalProjectCost,
			deal.PotentialProfit,
			deal.ROI,
			deal.MaxPurchasePrice,
			deal.Meets70PercentRule,
			deal.Property.DaysOnMarket,
			deal.Property.Bedrooms,
			deal.Property.Bathrooms,
			deal.Property.SquareFeet,
			deal.Property.YearBuilt,
			deal.Property.PricePerSqft,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, value)
		}

		roiCell, _ := excelize.CoordinatesToCellName(10, row+2)
		f.SetCellStyle(sheetName, roiCell, roiCell, roiStyles.forROI(deal.ROI))
	}

	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "K", 14)

	if err := f.SaveAs(outputFile); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"file":  outputFile,
		"deals": len(deals),
	}).Info("Exported deals to Excel")
	return nil
}

type roiStyleSet struct {
	green  int
	yellow int
	pink   int
}

func (s roiStyleSet) forROI(roi float64) int {
	switch {
	case roi >= roiGreenThreshold:
		return s.green
	case roi >= roiYellowThreshold:
		return s.yellow
	default:
		return s.pink
	}
}

func (e *ExcelExporter) roiStyles(f *excelize.File) (roiStyleSet, error) {
	fill := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
	}

	var set roiStyleSet
	var err error
	if set.green, err = fill("90EE90"); err != nil {
		return set, err
	}
	if set.yellow, err = fill("FFFFE0"); err != nil {
		return set, err
	}
	if set.pink, err = fill("FFC0CB"); err != nil {
		return set, err
	}
	return set, nil
}
