package render

import (
	"bytes"
	"fmt"

	"github.com/afumu/gptrace/internal/model"
	"github.com/xuri/excelize/v2"
)

// XLSX 每个片段一个工作表
func XLSX(report *model.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("创建样式失败: %w", err)
	}

	for i, s := range sections(report) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				return nil, fmt.Errorf("重命名工作表失败: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			return nil, fmt.Errorf("创建工作表失败: %w", err)
		}

		for j, h := range s.Header {
			cell, _ := excelize.CoordinatesToCellName(j+1, 1)
			f.SetCellValue(s.Title, cell, h)
		}
		last, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
		f.SetCellStyle(s.Title, "A1", last, headerStyle)

		for j, w := range s.Widths {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetColWidth(s.Title, col, col, w)
		}

		for r, row := range s.Rows {
			for j, v := range row {
				if v == nil {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(j+1, r+2)
				f.SetCellValue(s.Title, cell, v)
			}
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("写入XLSX失败: %w", err)
	}
	return buf.Bytes(), nil
}
