package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/internal/ingest"
	"github.com/afumu/gptrace/store"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"
)

// 2024-01-01 与 2024-01-02 (UTC) 各一个会话
const sampleExport = `[
  {"id":"c1","title":"python help","create_time":1704067200,"mapping":{
    "u1":{"id":"u1","message":{"author":{"role":"user"},"create_time":1704067200,"content":{"parts":["how do I sort a list in python"]}}},
    "a1":{"id":"a1","message":{"author":{"role":"assistant"},"create_time":1704067260,"content":{"parts":["use sorted:\n` + "```" + `sorted(xs)` + "```" + `"]}}}
  }},
  {"id":"c2","title":"dinner","create_time":1704153600,"mapping":{
    "u2":{"id":"u2","message":{"author":{"role":"user"},"create_time":1704153600,"content":{"parts":["python dinner ideas"]}}},
    "a2":{"id":"a2","message":{"author":{"role":"assistant"},"create_time":1704153660,"content":{"parts":["pasta"]}}}
  }}
]`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	gin.SetMode(gin.TestMode)

	work := t.TempDir()
	st, err := store.NewStore(store.Options{WorkDir: work, InboxDir: filepath.Join(work, "inbox")})
	if err != nil {
		t.Fatalf("NewStore 失败: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := NewService(st, ingest.NewService(st, time.UTC), &Config{
		Version:        "test",
		Location:       time.UTC,
		MaxUploadBytes: 1 << 20,
		ScanInterval:   10,
	})
	t.Cleanup(func() { svc.Stop() })
	return svc
}

func do(t *testing.T, svc *Service, method, path string, body []byte, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	svc.GetRouter().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("响应不是合法 JSON: %v, body=%s", err, w.Body.String())
		}
	}
	return w, env
}

func upload(t *testing.T, svc *Service) string {
	t.Helper()
	w, env := do(t, svc, http.MethodPost, "/api/v1/exports", []byte(sampleExport), "application/json")
	if w.Code != http.StatusCreated && w.Code != http.StatusOK {
		t.Fatalf("上传失败: %d %s", w.Code, w.Body.String())
	}
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &rec); err != nil || rec.ID == "" {
		t.Fatalf("上传响应缺少 id: %s", env.Data)
	}
	return rec.ID
}

func TestHealth(t *testing.T) {
	svc := newTestService(t)
	w, _ := do(t, svc, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("健康检查失败: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("响应应带有请求 ID")
	}
}

func TestUploadExport(t *testing.T) {
	svc := newTestService(t)

	w, env := do(t, svc, http.MethodPost, "/api/v1/exports", []byte(sampleExport), "application/json")
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("首次上传期望 201, 实际得到 %d %s", w.Code, w.Body.String())
	}

	// 同样内容以 multipart 方式再次上传
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "conversations.json")
	fw.Write([]byte(sampleExport))
	mw.Close()
	w, _ = do(t, svc, http.MethodPost, "/api/v1/exports", body.Bytes(), mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Errorf("重复上传期望 200, 实际得到 %d", w.Code)
	}

	for _, bad := range []string{"", "{", `{"a":1}`} {
		w, env = do(t, svc, http.MethodPost, "/api/v1/exports", []byte(bad), "application/json")
		if w.Code != http.StatusBadRequest || env.Success || env.Error.Code != http.StatusBadRequest {
			t.Errorf("非法上传 %q 期望 400, 实际得到 %d", bad, w.Code)
		}
	}

	w, env = do(t, svc, http.MethodGet, "/api/v1/exports", nil, "")
	var list []map[string]any
	json.Unmarshal(env.Data, &list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Errorf("期望 1 条记录, 实际得到 %d", len(list))
	}
}

func TestUploadArchiveTooLarge(t *testing.T) {
	svc := newTestService(t)
	saved := analyzer.MaxArchiveBytes
	analyzer.MaxArchiveBytes = 64
	defer func() { analyzer.MaxArchiveBytes = saved }()

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	fw, _ := zw.Create(analyzer.ConversationsFile)
	fw.Write([]byte(sampleExport))
	zw.Close()

	w, env := do(t, svc, http.MethodPost, "/api/v1/exports", archive.Bytes(), "application/zip")
	if w.Code != http.StatusRequestEntityTooLarge || env.Success {
		t.Errorf("解压后超限期望 413, 实际得到 %d %s", w.Code, w.Body.String())
	}
}

func TestExportNotFound(t *testing.T) {
	svc := newTestService(t)
	for _, path := range []string{"/api/v1/exports/nope", "/api/v1/exports/nope/report", "/api/v1/exports/nope/wordcloud"} {
		w, env := do(t, svc, http.MethodGet, path, nil, "")
		if w.Code != http.StatusNotFound || env.Success {
			t.Errorf("%s 期望 404, 实际得到 %d", path, w.Code)
		}
	}
	w, _ := do(t, svc, http.MethodDelete, "/api/v1/exports/nope", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("删除不存在的记录期望 404, 实际得到 %d", w.Code)
	}
}

func TestAnalysisEndpoints(t *testing.T) {
	svc := newTestService(t)
	id := upload(t, svc)
	base := "/api/v1/exports/" + id

	_, env := do(t, svc, http.MethodGet, base+"/metrics", nil, "")
	var metrics struct {
		TotalConversations       int     `json:"totalConversations"`
		MessageCount             int     `json:"messageCount"`
		CodeContainingPercentage float64 `json:"codeContainingPercentage"`
		PeakUsageHour            int     `json:"peakUsageHour"`
	}
	json.Unmarshal(env.Data, &metrics)
	if metrics.TotalConversations != 2 || metrics.MessageCount != 4 || metrics.CodeContainingPercentage != 50 {
		t.Errorf("指标不正确: %+v", metrics)
	}

	_, env = do(t, svc, http.MethodGet, base+"/daily", nil, "")
	var daily []map[string]any
	json.Unmarshal(env.Data, &daily)
	if len(daily) != 2 || daily[0]["date"] != "2024-01-01" {
		t.Errorf("每日序列不正确: %s", env.Data)
	}

	_, env = do(t, svc, http.MethodGet, base+"/daily?granularity=monthly", nil, "")
	var monthly []map[string]any
	json.Unmarshal(env.Data, &monthly)
	if len(monthly) != 1 || monthly[0]["date"] != "2024-01" || monthly[0]["value"] != float64(4) {
		t.Errorf("月度序列不正确: %s", env.Data)
	}

	w, _ := do(t, svc, http.MethodGet, base+"/daily?granularity=yearly", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法粒度期望 400, 实际得到 %d", w.Code)
	}

	_, env = do(t, svc, http.MethodGet, base+"/hourly", nil, "")
	var hourly []map[string]any
	json.Unmarshal(env.Data, &hourly)
	if len(hourly) != 24 || hourly[0]["date"] != "00:00" || hourly[0]["value"] != float64(4) {
		t.Errorf("时段序列不正确: %s", env.Data)
	}

	_, env = do(t, svc, http.MethodGet, base+"/lengths?merged=true", nil, "")
	var merged []map[string]any
	json.Unmarshal(env.Data, &merged)
	if len(merged) != 4 || merged[0]["type"] == nil {
		t.Errorf("合并长度序列不正确: %s", env.Data)
	}

	_, env = do(t, svc, http.MethodGet, base+"/groups?page=1&page_size=1", nil, "")
	var page struct {
		TotalItems int `json:"totalItems"`
		TotalPages int `json:"totalPages"`
		Groups     []struct {
			Date string `json:"date"`
		} `json:"groups"`
	}
	json.Unmarshal(env.Data, &page)
	if page.TotalItems != 2 || page.TotalPages != 2 || len(page.Groups) != 1 || page.Groups[0].Date != "2024-01-02" {
		t.Errorf("分组分页不正确: %s", env.Data)
	}

	_, env = do(t, svc, http.MethodGet, base+"/wordcloud?limit=5", nil, "")
	if !strings.Contains(string(env.Data), `"python"`) {
		t.Errorf("词云应包含 python: %s", env.Data)
	}

	w, _ = do(t, svc, http.MethodGet, base+"/report?tz=Not/AZone", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法时区期望 400, 实际得到 %d", w.Code)
	}
}

func TestDownloadAndDelete(t *testing.T) {
	svc := newTestService(t)
	id := upload(t, svc)
	base := "/api/v1/exports/" + id

	w, _ := do(t, svc, http.MethodGet, base+"/download?format=csv", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "conversations_report.csv") {
		t.Errorf("CSV 下载失败: %d %v", w.Code, w.Header())
	}

	w, _ = do(t, svc, http.MethodGet, base+"/download?format=html", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("不支持的格式期望 400, 实际得到 %d", w.Code)
	}

	w, _ = do(t, svc, http.MethodDelete, base, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("删除失败: %d", w.Code)
	}
	w, _ = do(t, svc, http.MethodGet, base, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("删除后期望 404, 实际得到 %d", w.Code)
	}
}

func TestAnalyzeIsStateless(t *testing.T) {
	svc := newTestService(t)

	w, env := do(t, svc, http.MethodPost, "/api/v1/analyze?tz=UTC", []byte(sampleExport), "application/json")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"totalConversations":2`) {
		t.Fatalf("分析失败: %d %s", w.Code, w.Body.String())
	}

	_, env = do(t, svc, http.MethodPost, "/api/v1/analyze", []byte(`[]`), "application/json")
	if !strings.Contains(string(env.Data), `"metrics":null`) {
		t.Errorf("空导出 metrics 应为 null: %s", env.Data)
	}

	_, env = do(t, svc, http.MethodGet, "/api/v1/exports", nil, "")
	if string(env.Data) != "[]" {
		t.Errorf("无状态分析不应入库: %s", env.Data)
	}
}

func TestSystemEndpoints(t *testing.T) {
	svc := newTestService(t)

	w, env := do(t, svc, http.MethodGet, "/api/v1/system/status", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"timezone":"UTC"`) {
		t.Errorf("状态接口不正确: %d %s", w.Code, env.Data)
	}

	w, _ = do(t, svc, http.MethodPost, "/api/v1/system/scheduler", []byte(`{"enabled":true,"interval_minutes":0}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法间隔期望 400, 实际得到 %d", w.Code)
	}

	w, env = do(t, svc, http.MethodPost, "/api/v1/system/scheduler", []byte(`{"enabled":true,"interval_minutes":15}`), "application/json")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"interval_minutes":15`) {
		t.Errorf("更新调度器失败: %d %s", w.Code, env.Data)
	}

	w, _ = do(t, svc, http.MethodPost, "/api/v1/system/rescan", nil, "")
	if w.Code != http.StatusAccepted && w.Code != http.StatusConflict {
		t.Errorf("触发扫描期望 202, 实际得到 %d", w.Code)
	}
}

func TestRecoveryAndNoRoute(t *testing.T) {
	svc := newTestService(t)
	svc.GetRouter().GET("/boom", func(c *gin.Context) { panic("boom") })

	w, env := do(t, svc, http.MethodGet, "/boom", nil, "")
	if w.Code != http.StatusInternalServerError || env.Success {
		t.Errorf("panic 应返回 500, 实际得到 %d", w.Code)
	}

	w, _ = do(t, svc, http.MethodGet, "/api/v1/unknown", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("未知路由期望 404, 实际得到 %d", w.Code)
	}
}
