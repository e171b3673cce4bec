package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// 月度统计导出表头
var monthlyStatsHeader = []string{
	"Name",
	"Visits",
	"Total Hours",
}

// ExportMonthlyStats 导出月度统计 Excel
func (s *statsService) ExportMonthlyStats(ctx context.Context, req MonthlyStatsRequest) ([]byte, error) {
	stats, err := s.MonthlyStats(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	// 注意：这里不能 defer Close()，WriteTo 需要文件保持打开

	sheetName := fmt.Sprintf("%d-%02d", stats.Year, stats.Month)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 写入表头
	for col, header := range monthlyStatsHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	// 设置列宽
	columnWidths := []float64{
		30, // Name
		12, // Visits
		15, // Total Hours
	}
	for i := range monthlyStatsHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 写入分组数据
	for rowIdx, g := range stats.Groups {
		row := rowIdx + 2 // 从第2行开始（第1行是表头）
		values := []any{g.Name, g.VisitCount, g.TotalHours}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	// 汇总行
	totalRow := len(stats.Groups) + 3
	totalLabelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totalValueCell, _ := excelize.CoordinatesToCellName(3, totalRow)
	monthLabel := time.Month(stats.Month).String()
	if err := f.SetCellValue(sheetName, totalLabelCell, fmt.Sprintf("Total for %s %d", monthLabel, stats.Year)); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set total label: %w", err)
	}
	if err := f.SetCellValue(sheetName, totalValueCell, stats.TotalMonthHours); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set total value: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}
