package render

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/afumu/gptrace/internal/model"
)

// CSV 按片段依次写出，片段之间空一行
func CSV(report *model.Report) ([]byte, error) {
	var buf bytes.Buffer

	// 写入 UTF-8 BOM，确保 Excel 正确识别编码
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	for i, s := range sections(report) {
		if i > 0 {
			if err := w.Write([]string{}); err != nil {
				return nil, fmt.Errorf("写入CSV失败: %w", err)
			}
		}
		if err := w.Write([]string{"# " + s.Title}); err != nil {
			return nil, fmt.Errorf("写入CSV失败: %w", err)
		}
		if err := w.Write(s.Header); err != nil {
			return nil, fmt.Errorf("写入CSV表头失败: %w", err)
		}
		for _, row := range s.Rows {
			record := make([]string, len(row))
			for j, v := range row {
				record[j] = rawCell(v)
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("写入CSV数据失败: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV写入错误: %w", err)
	}
	return buf.Bytes(), nil
}
