package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/afumu/gptrace/internal/model"
	"github.com/gomutex/godocx"
)

// DOCX 每个片段一个二级标题，行写成段落
func DOCX(report *model.Report) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("创建DOCX文档失败: %w", err)
	}
	defer doc.Close()

	doc.AddHeading("ChatGPT 使用报告", 1)
	doc.AddParagraph(reportSubtitle(report))

	for _, s := range sections(report) {
		doc.AddEmptyParagraph()
		doc.AddHeading(s.Title, 2)
		if len(s.Rows) == 0 {
			doc.AddParagraph("暂无数据")
			continue
		}
		for _, row := range s.Rows {
			doc.AddParagraph(humanLine(s.Header, row))
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("写入DOCX失败: %w", err)
	}
	return buf.Bytes(), nil
}

func reportSubtitle(report *model.Report) string {
	return fmt.Sprintf("时区: %s    生成时间: %s",
		report.Timezone, report.GeneratedAt.Format("2006-01-02 15:04:05"))
}

// humanLine 两列的片段写成 "键: 值"，多列的写成 "列=值" 列表
func humanLine(header []string, row []any) string {
	if len(row) == 2 {
		return fmt.Sprintf("%s: %s", humanCell(row[0]), humanCell(row[1]))
	}
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = fmt.Sprintf("%s=%s", header[i], humanCell(v))
	}
	return strings.Join(parts, "  ")
}
