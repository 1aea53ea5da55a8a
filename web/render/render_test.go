package render

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/afumu/gptrace/internal/model"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func sampleReport() *model.Report {
	return &model.Report{
		Metrics: &model.DerivedMetrics{
			TotalConversations: 2,
			MessageCount:       1234,
			UserMessages:       600,
			AssistantMessages:  634,
			AverageTurns:       617,
			PeakUsageHour:      9,
		},
		Daily:  []model.TimeSeriesPoint{{Date: "2024-01-01", Value: 1}, {Date: "2024-01-02", Value: 1}},
		Hourly: []model.TimeSeriesPoint{{Date: "09:00", Value: 2}},
		Lengths: model.LengthSeries{
			UserLengths: []model.TimeSeriesPoint{{Date: "2024-01-01", Value: 12.5}},
			BotLengths:  []model.TimeSeriesPoint{{Date: "2024-01-01", Value: 80}, {Date: "2024-01-02", Value: 40}},
		},
		Groups: []model.ConversationGroup{{
			Date:          "2024-01-02",
			Conversations: []model.ConversationEntry{{Title: "hello, world", MessageCount: 4, FirstMessage: "hi"}},
		}},
		Highlights:  &model.Highlights{UsageTrend: "stable"},
		Timezone:    "UTC",
		GeneratedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatJSON, "CSV": FormatCSV, "yml": FormatYAML, "pdf": FormatPDF}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; 期望 %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("html"); err == nil {
		t.Error("不支持的格式应返回错误")
	}
	if name := FormatXLSX.Filename("conversations.json"); name != "conversations_report.xlsx" {
		t.Errorf("文件名不正确: %s", name)
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleReport())
	if err != nil {
		t.Fatalf("CSV 失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("CSV 应以 UTF-8 BOM 开头")
	}

	r := csv.NewReader(bytes.NewReader(data[3:]))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("CSV 解析失败: %v", err)
	}

	text := string(data)
	for _, want := range []string{"# 概览", "消息总数,1234", "# 消息长度", "2024-01-02,,40", `"hello, world"`} {
		if !strings.Contains(text, want) {
			t.Errorf("CSV 缺少 %q", want)
		}
	}
	if len(records) < 10 {
		t.Errorf("CSV 行数过少: %d", len(records))
	}
}

func TestCSV_EmptyReport(t *testing.T) {
	data, err := CSV(&model.Report{})
	if err != nil {
		t.Fatalf("CSV 失败: %v", err)
	}
	if !strings.Contains(string(data), "# 概览") {
		t.Error("空报告也应输出各片段表头")
	}
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleReport())
	if err != nil {
		t.Fatalf("XLSX 失败: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("打开 XLSX 失败: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 6 || sheets[0] != "概览" {
		t.Errorf("工作表不正确: %v", sheets)
	}
	v, err := f.GetCellValue("概览", "B2")
	if err != nil || v != "2" {
		t.Errorf("期望会话总数 2, 实际得到 %q (%v)", v, err)
	}
	title, _ := f.GetCellValue("会话分组", "B2")
	if title != "hello, world" {
		t.Errorf("期望标题 hello, world, 实际得到 %q", title)
	}
}

func TestDOCX(t *testing.T) {
	data, err := DOCX(sampleReport())
	if err != nil {
		t.Fatalf("DOCX 失败: %v", err)
	}
	// docx 是 zip 容器
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("DOCX 输出应为 zip 格式")
	}
}

func TestPDF(t *testing.T) {
	if fontPath() == "" {
		t.Skip("系统中没有可用字体")
	}
	data, err := PDF(sampleReport())
	if err != nil {
		t.Fatalf("PDF 失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("PDF 输出格式不正确")
	}
}

func TestYAML(t *testing.T) {
	data, err := YAML(sampleReport())
	if err != nil {
		t.Fatalf("YAML 失败: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "{") {
		t.Errorf("YAML 应为块风格: %s", text)
	}
	if strings.Index(text, "metrics:") > strings.Index(text, "daily:") {
		t.Error("YAML 字段顺序应与 JSON 一致")
	}

	var back map[string]any
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("YAML 解析失败: %v", err)
	}
	if back["timezone"] != "UTC" {
		t.Errorf("期望 timezone UTC, 实际得到 %v", back["timezone"])
	}
	hourly := back["hourly"].([]any)
	if hourly[0].(map[string]any)["date"] != "09:00" {
		t.Errorf("小时标签应保持字符串, 实际得到 %v", hourly[0])
	}
}

func TestHumanCell(t *testing.T) {
	if got := humanCell(1234567); got != "1,234,567" {
		t.Errorf("期望千分位, 实际得到 %s", got)
	}
	if got := humanCell(12.5); got != "12.50" {
		t.Errorf("期望 12.50, 实际得到 %s", got)
	}
	if got := humanCell(nil); got != "-" {
		t.Errorf("缺失值期望 -, 实际得到 %s", got)
	}
}
