package api

import (
	"github.com/afumu/gptrace/web/render"
	"github.com/afumu/gptrace/web/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DownloadReport 以附件形式下载报告
func (a *API) DownloadReport(c *gin.Context) {
	var q transport.DownloadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	format, err := render.ParseFormat(q.Format)
	if err != nil {
		transport.BadRequest(c, err.Error())
		return
	}

	rec, err := a.Store.GetExport(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	report, ok := a.report(c, q.TZ)
	if !ok {
		return
	}

	data, err := render.Render(report, format)
	if err != nil {
		handleError(c, err)
		return
	}

	log.Info().Str("id", rec.ID).Str("format", string(format)).Int("bytes", len(data)).Msg("报告已导出")
	transport.SendAttachment(c, format.Filename(rec.Name), format.ContentType(), data)
}
