package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/textilia/contracts-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the statistics buckets as a single-sheet workbook.
func (g *Generator) Generate(stats model.ContractStats) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Contract Stats"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Generated")
	set("B1", time.Now().Format("2006-01-02"))

	set("A3", "Status")
	set("B3", "General")
	set("C3", "Block booking")
	set("D3", "Total")

	rows := []struct {
		label  string
		values [3]int64
	}{
		{"Running", [3]int64{stats.General.Running, stats.BlockBooking.Running, stats.Total.Running}},
		{"Completed", [3]int64{stats.General.Completed, stats.BlockBooking.Completed, stats.Total.Completed}},
		{"Closed", [3]int64{stats.General.Closed, stats.BlockBooking.Closed, stats.Total.Closed}},
		{"Paused", [3]int64{stats.General.Paused, stats.BlockBooking.Paused, stats.Total.Paused}},
		{"Cancelled", [3]int64{stats.General.Cancelled, stats.BlockBooking.Cancelled, stats.Total.Cancelled}},
	}
	for i, row := range rows {
		line := 4 + i
		set(fmt.Sprintf("A%d", line), row.label)
		set(fmt.Sprintf("B%d", line), row.values[0])
		set(fmt.Sprintf("C%d", line), row.values[1])
		set(fmt.Sprintf("D%d", line), row.values[2])
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
