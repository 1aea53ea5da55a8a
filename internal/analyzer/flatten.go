package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/afumu/gptrace/internal/model"
)

// 三个反引号，至少一个字符（可跨行），三个反引号；非贪婪
var fencedCode = regexp.MustCompile("```[\\s\\S]+?```")

// FlatMessage 是带派生字段的单条消息
type FlatMessage struct {
	Role  string
	Text  string
	Chars int // Unicode 码点数
	Words int
	Time  model.Timestamp
}

// FlatConversation 是一个会话展开后的消息列表
type FlatConversation struct {
	ID         string
	Title      string
	CreateTime model.Timestamp
	Messages   []FlatMessage
	// FirstUserMessage 是 mapping 插入顺序中第一条用户消息的文本
	FirstUserMessage string
	HasCode          bool
}

// UserMessages 返回用户消息条数。
func (fc FlatConversation) UserMessages() int {
	n := 0
	for _, m := range fc.Messages {
		if m.Role == model.RoleUser {
			n++
		}
	}
	return n
}

// Flatten 把会话的 mapping 当作无序集合遍历，只保留带 message 的节点。
// 不沿 parent/children 走树，孤立节点和环都不会造成问题。
func Flatten(conv *model.Conversation) FlatConversation {
	if conv == nil {
		return FlatConversation{}
	}

	fc := FlatConversation{
		ID:         conv.ID,
		Title:      conv.Title,
		CreateTime: conv.CreateTime,
		Messages:   make([]FlatMessage, 0, conv.Mapping.Len()),
	}

	seenUser := false
	for _, node := range conv.Mapping.Nodes() {
		if node == nil || node.Message == nil {
			continue
		}

		text := ExtractText(node.Message)
		fm := FlatMessage{
			Role:  node.Message.Author.Role,
			Text:  text,
			Chars: utf8.RuneCountInString(text),
			Words: WordCount(text),
			Time:  node.Message.CreateTime,
		}
		fc.Messages = append(fc.Messages, fm)

		switch fm.Role {
		case model.RoleUser:
			if !seenUser {
				seenUser = true
				fc.FirstUserMessage = text
			}
		case model.RoleAssistant:
			if !fc.HasCode && ContainsCode(text) {
				fc.HasCode = true
			}
		}
	}
	return fc
}

// WordCount 去掉首尾空白后按空白切分计数，空文本记为 0。
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ContainsCode 判断文本中是否有闭合的围栏代码块。
func ContainsCode(text string) bool {
	return fencedCode.MatchString(text)
}
