package api

import (
	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/pkg/wordcloud"
	"github.com/afumu/gptrace/web/transport"
	"github.com/gin-gonic/gin"
)

// GetWordCloud 统计用户提问的词频
func (a *API) GetWordCloud(c *gin.Context) {
	var q transport.WordCloudQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		transport.BadRequest(c, "参数错误")
		return
	}

	convs, err := a.Store.LoadConversations(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	transport.SendSuccess(c, wordcloud.Analyze(analyzer.UserPrompts(convs), q.Limit))
}
