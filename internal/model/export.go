package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Conversation 对应导出文件中的一条会话记录。
// 解码是逐字段宽松的：字段类型不对时取零值，不会让整条记录失败。
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreateTime  Timestamp `json:"create_time"`
	UpdateTime  Timestamp `json:"update_time"`
	Mapping     Mapping   `json:"mapping"`
	CurrentNode string    `json:"current_node"`
}

func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Title       json.RawMessage `json:"title"`
		CreateTime  json.RawMessage `json:"create_time"`
		UpdateTime  json.RawMessage `json:"update_time"`
		Mapping     json.RawMessage `json:"mapping"`
		CurrentNode json.RawMessage `json:"current_node"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Conversation{
		ID:          lenientString(raw.ID),
		Title:       lenientString(raw.Title),
		CurrentNode: lenientString(raw.CurrentNode),
	}
	_ = c.CreateTime.UnmarshalJSON(raw.CreateTime)
	_ = c.UpdateTime.UnmarshalJSON(raw.UpdateTime)
	_ = c.Mapping.UnmarshalJSON(raw.Mapping)
	return nil
}

// Mapping 是按插入顺序保存的节点表 (node id -> Node)。
// Go 的 map 没有顺序，而 "第一条用户消息" 依赖源文件中的键顺序，所以这里逐 token 解码。
type Mapping struct {
	keys  []string
	nodes []*Node
	index map[string]int
}

// NewMapping 按给定顺序构建 Mapping，主要用于测试和程序内构造。
func NewMapping(nodes ...*Node) Mapping {
	var m Mapping
	for _, n := range nodes {
		m.put(n.ID, n)
	}
	return m
}

func (m *Mapping) put(key string, n *Node) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		// 重复键：保留首次出现的位置，值以后者为准
		m.nodes[i] = n
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.nodes = append(m.nodes, n)
}

// Len 返回节点数量（包括没有 message 的结构节点）。
func (m Mapping) Len() int { return len(m.nodes) }

// Keys 按插入顺序返回节点 id。
func (m Mapping) Keys() []string { return m.keys }

// Nodes 按插入顺序返回所有节点。
func (m Mapping) Nodes() []*Node { return m.nodes }

// Get 按 id 查找节点。
func (m Mapping) Get(id string) (*Node, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.nodes[i], true
}

func (m *Mapping) UnmarshalJSON(data []byte) error {
	*m = Mapping{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		// null 或者其它类型，视为空 mapping
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var n Node
		if err := json.Unmarshal(raw, &n); err != nil {
			// 不是对象的节点直接丢弃
			continue
		}
		if n.ID == "" {
			n.ID = key
		}
		m.put(key, &n)
	}
	return nil
}

func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.nodes[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Node 会话树中的一个节点，结构节点没有 Message。
type Node struct {
	ID       string   `json:"id"`
	Message  *Message `json:"message,omitempty"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Message  json.RawMessage `json:"message"`
		Parent   json.RawMessage `json:"parent"`
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = Node{
		ID:     lenientString(raw.ID),
		Parent: lenientString(raw.Parent),
	}
	_ = json.Unmarshal(raw.Children, &n.Children)

	if isObject(raw.Message) {
		var msg Message
		if err := json.Unmarshal(raw.Message, &msg); err == nil {
			n.Message = &msg
		}
	}
	return nil
}

// Author 消息作者
type Author struct {
	Role string `json:"role"` // user | assistant | system | tool
	Name string `json:"name,omitempty"`
}

// Message 节点上携带的消息。Content 保留原始 JSON 值，由分析器按形状解析。
type Message struct {
	ID         string    `json:"id"`
	Author     Author    `json:"author"`
	Content    any       `json:"content"`
	CreateTime Timestamp `json:"create_time"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         json.RawMessage `json:"id"`
		Author     json.RawMessage `json:"author"`
		Content    json.RawMessage `json:"content"`
		CreateTime json.RawMessage `json:"create_time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{ID: lenientString(raw.ID)}
	if isObject(raw.Author) {
		var a struct {
			Role json.RawMessage `json:"role"`
			Name json.RawMessage `json:"name"`
		}
		if err := json.Unmarshal(raw.Author, &a); err == nil {
			m.Author = Author{Role: lenientString(a.Role), Name: lenientString(a.Name)}
		}
	}
	if len(raw.Content) > 0 {
		_ = json.Unmarshal(raw.Content, &m.Content)
	}
	_ = m.CreateTime.UnmarshalJSON(raw.CreateTime)
	return nil
}

// Timestamp 是 Unix 秒（允许小数）。缺失、null 或无法识别的值都记为无效，而不是报错。
type Timestamp struct {
	Seconds float64
	Valid   bool
}

// Unix 构造时间戳，NaN 与 ±Inf 视为无效。
func Unix(sec float64) Timestamp {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return Timestamp{}
	}
	return Timestamp{Seconds: sec, Valid: true}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	var v any
	if len(data) == 0 || json.Unmarshal(data, &v) != nil {
		return nil
	}

	switch x := v.(type) {
	case float64:
		t.Seconds, t.Valid = x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			t.Seconds, t.Valid = f, true
		}
	}
	if t.Valid && (math.IsNaN(t.Seconds) || math.IsInf(t.Seconds, 0)) {
		*t = Timestamp{}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid || math.IsNaN(t.Seconds) || math.IsInf(t.Seconds, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(t.Seconds, 'f', -1, 64)), nil
}

// Time 返回对应的时刻 (UTC)。
func (t Timestamp) Time() (time.Time, bool) {
	if !t.Valid || math.IsNaN(t.Seconds) || math.IsInf(t.Seconds, 0) {
		return time.Time{}, false
	}
	sec, frac := math.Modf(t.Seconds)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
