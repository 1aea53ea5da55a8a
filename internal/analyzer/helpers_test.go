package analyzer

import (
	"fmt"
	"time"

	"github.com/afumu/gptrace/internal/model"
)

// 2024-01-01T00:00:00Z
const jan1 = 1704067200.0

const (
	hour = 3600.0
	day  = 86400.0
)

var utcClock = NewClock(time.UTC)

func textContent(parts ...any) map[string]any {
	return map[string]any{"content_type": "text", "parts": parts}
}

func msgNode(id, role, text string, ts float64) *model.Node {
	return &model.Node{
		ID: id,
		Message: &model.Message{
			ID:         id,
			Author:     model.Author{Role: role},
			Content:    textContent(text),
			CreateTime: model.Unix(ts),
		},
	}
}

func rootNode(id string) *model.Node {
	return &model.Node{ID: id}
}

func newConv(id string, created float64, nodes ...*model.Node) model.Conversation {
	return model.Conversation{
		ID:         id,
		Title:      "title " + id,
		CreateTime: model.Unix(created),
		Mapping:    model.NewMapping(nodes...),
	}
}

// exchange 生成 n 轮用户/助手对话，时间从 start 开始每条间隔一分钟
func exchange(id string, start float64, turns int) model.Conversation {
	nodes := []*model.Node{rootNode(id + "-root")}
	for i := 0; i < turns; i++ {
		ts := start + float64(i*2)*60
		nodes = append(nodes,
			msgNode(fmt.Sprintf("%s-u%d", id, i), model.RoleUser, fmt.Sprintf("question %d", i), ts),
			msgNode(fmt.Sprintf("%s-a%d", id, i), model.RoleAssistant, "an answer here", ts+60),
		)
	}
	return newConv(id, start, nodes...)
}
