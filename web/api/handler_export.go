package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/store/types"
	"github.com/afumu/gptrace/web/transport"
	"github.com/gin-gonic/gin"
)

var errEmptyUpload = errors.New("上传内容为空")

// readUpload 读取 multipart 的 file 字段，或者直接读取请求体
func (a *API) readUpload(c *gin.Context) (string, []byte, error) {
	if a.Conf.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.Conf.MaxUploadBytes)
	}

	name := analyzer.ConversationsFile
	var data []byte
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", nil, err
			}
			return "", nil, errEmptyUpload
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		if data, err = io.ReadAll(f); err != nil {
			return "", nil, err
		}
		name = fh.Filename
	} else {
		var err error
		if data, err = io.ReadAll(c.Request.Body); err != nil {
			return "", nil, err
		}
		if q := c.Query("name"); q != "" {
			name = q
		}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return "", nil, errEmptyUpload
	}
	return name, data, nil
}

// UploadExport 上传并保存导出文件
func (a *API) UploadExport(c *gin.Context) {
	name, data, err := a.readUpload(c)
	if errors.Is(err, errEmptyUpload) {
		transport.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	rec, created, err := a.Ingest.Ingest(c.Request.Context(), name, "upload", data)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	transport.SendStatus(c, status, rec)
}

// AnalyzeUpload 直接分析上传内容，不入库
func (a *API) AnalyzeUpload(c *gin.Context) {
	var q transport.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	loc, err := a.location(q.TZ)
	if err != nil {
		transport.BadRequest(c, err.Error())
		return
	}

	name, data, err := a.readUpload(c)
	if errors.Is(err, errEmptyUpload) {
		transport.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	convs, err := analyzer.DecodeFile(name, data)
	if err != nil {
		handleError(c, err)
		return
	}
	transport.SendSuccess(c, analyzer.New(analyzer.WithLocation(loc)).Analyze(convs))
}

// ListExports 列出已入库的导出文件
func (a *API) ListExports(c *gin.Context) {
	var q transport.PaginationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "分页参数错误")
		return
	}

	list, err := a.Store.ListExports(c.Request.Context(), types.ExportQuery{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		handleError(c, err)
		return
	}
	transport.SendSuccess(c, list)
}

// GetExport 获取单个导出记录
func (a *API) GetExport(c *gin.Context) {
	rec, err := a.Store.GetExport(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	transport.SendSuccess(c, rec)
}

// DeleteExport 删除导出记录及其报告缓存
func (a *API) DeleteExport(c *gin.Context) {
	if err := a.Store.DeleteExport(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	transport.SendSuccess(c, gin.H{"status": "deleted"})
}
