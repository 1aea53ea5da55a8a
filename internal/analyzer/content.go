package analyzer

import (
	"strconv"
	"strings"

	"github.com/afumu/gptrace/internal/model"
	"github.com/mitchellh/mapstructure"
)

// contentFields 是 content 对象中分析器关心的字段
type contentFields struct {
	Parts any `mapstructure:"parts"`
}

// objectPart 是 parts 中对象形式的片段，例如多模态消息里的文本块
type objectPart struct {
	Text string `mapstructure:"text"`
}

// ExtractText 返回消息可显示的文本，从不失败。
//   - message 为空 -> ""
//   - content.parts 是数组 -> 非假值片段用单个空格连接
//   - content 本身是字符串 -> 原样返回
//   - 其它 -> ""
func ExtractText(msg *model.Message) string {
	if msg == nil || msg.Content == nil {
		return ""
	}

	switch c := msg.Content.(type) {
	case string:
		return c
	case map[string]any:
		var fields contentFields
		if err := mapstructure.Decode(c, &fields); err != nil {
			return ""
		}
		parts, ok := fields.Parts.([]any)
		if !ok {
			return ""
		}
		return joinParts(parts)
	}
	return ""
}

func joinParts(parts []any) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s, ok := partText(p); ok {
			texts = append(texts, s)
		}
	}
	return strings.Join(texts, " ")
}

// partText 把单个片段转成文本，假值（null、""、false、0）被丢弃
func partText(p any) (string, bool) {
	switch v := p.(type) {
	case string:
		return v, v != ""
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return "true", v
	case map[string]any:
		var obj objectPart
		if err := mapstructure.Decode(v, &obj); err != nil || obj.Text == "" {
			return "", false
		}
		return obj.Text, true
	}
	return "", false
}
