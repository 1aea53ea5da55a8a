package api

import (
	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/internal/model"
	"github.com/afumu/gptrace/web/transport"
	"github.com/gin-gonic/gin"
)

// report 解析时区后读取（或计算）报告，出错时已写入响应
func (a *API) report(c *gin.Context, tz string) (*model.Report, bool) {
	loc, err := a.location(tz)
	if err != nil {
		transport.BadRequest(c, err.Error())
		return nil, false
	}
	report, err := a.Store.GetReport(c.Request.Context(), c.Param("id"), loc)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return report, true
}

// flattened 读取会话并展开，用于缓存报告未覆盖的粒度
func (a *API) flattened(c *gin.Context, tz string) ([]analyzer.FlatConversation, analyzer.Clock, bool) {
	loc, err := a.location(tz)
	if err != nil {
		transport.BadRequest(c, err.Error())
		return nil, analyzer.Clock{}, false
	}
	convs, err := a.Store.LoadConversations(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return nil, analyzer.Clock{}, false
	}
	return analyzer.FlattenAll(convs), analyzer.NewClock(loc), true
}

// GetReport 获取完整报告
func (a *API) GetReport(c *gin.Context) {
	var q transport.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	if report, ok := a.report(c, q.TZ); ok {
		transport.SendSuccess(c, report)
	}
}

// GetMetrics 获取汇总指标，空导出时为 null
func (a *API) GetMetrics(c *gin.Context) {
	var q transport.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	if report, ok := a.report(c, q.TZ); ok {
		transport.SendSuccess(c, report.Metrics)
	}
}

// GetDailyVolume 获取会话数量时间序列
func (a *API) GetDailyVolume(c *gin.Context) {
	var q transport.SeriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	g, err := analyzer.ParseGranularity(q.Granularity)
	if err != nil {
		transport.BadRequest(c, err.Error())
		return
	}

	if g == analyzer.Daily {
		if report, ok := a.report(c, q.TZ); ok {
			transport.SendSuccess(c, report.Daily)
		}
		return
	}
	if flat, clock, ok := a.flattened(c, q.TZ); ok {
		transport.SendSuccess(c, analyzer.Volume(flat, clock, g))
	}
}

// GetHourlyVolume 获取 24 小时消息分布
func (a *API) GetHourlyVolume(c *gin.Context) {
	var q transport.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	if report, ok := a.report(c, q.TZ); ok {
		transport.SendSuccess(c, report.Hourly)
	}
}

// GetMessageLengths 获取用户与助手的平均消息长度序列
func (a *API) GetMessageLengths(c *gin.Context) {
	var q transport.SeriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}
	g, err := analyzer.ParseGranularity(q.Granularity)
	if err != nil {
		transport.BadRequest(c, err.Error())
		return
	}

	var lengths model.LengthSeries
	if g == analyzer.Daily {
		report, ok := a.report(c, q.TZ)
		if !ok {
			return
		}
		lengths = report.Lengths
	} else {
		flat, clock, ok := a.flattened(c, q.TZ)
		if !ok {
			return
		}
		lengths = analyzer.MessageLengthsBy(flat, clock, g)
	}

	if q.Merged {
		transport.SendSuccess(c, lengths.Merged())
		return
	}
	transport.SendSuccess(c, lengths)
}

// GetConversationGroups 分页获取按日期分组的会话
func (a *API) GetConversationGroups(c *gin.Context) {
	var q transport.GroupPageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "分页参数错误")
		return
	}
	if report, ok := a.report(c, q.TZ); ok {
		transport.SendSuccess(c, analyzer.Paginate(report.Groups, q.Page, q.PageSize))
	}
}
