package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/afumu/gptrace/internal/model"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
)

var (
	// ErrMalformed 输入不是合法的 JSON
	ErrMalformed = errors.New("导出文件不是合法的 JSON")
	// ErrNotArray 输入是 JSON，但顶层不是数组
	ErrNotArray = errors.New("导出文件顶层必须是会话数组")
	// ErrNoConversations 压缩包中没有 conversations.json
	ErrNoConversations = errors.New("压缩包中未找到 conversations.json")
	// ErrArchiveTooLarge 压缩包中的 conversations.json 解压后超过上限
	ErrArchiveTooLarge = errors.New("压缩包解压后超过大小限制")
)

// ArchiveExpansion 解压上限相对上传上限的倍数，JSON 的压缩率通常在 5~10 倍之间
const ArchiveExpansion = 16

// MaxArchiveBytes 压缩包内 conversations.json 解压后的最大字节数，<=0 表示不限制
var MaxArchiveBytes int64 = (256 << 20) * ArchiveExpansion

// ConversationsFile 是官方导出压缩包中的会话文件名
const ConversationsFile = "conversations.json"

// IsDecodeError 判断错误是否来自输入校验（应返回给用户的错误）。
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrNotArray) ||
		errors.Is(err, ErrNoConversations) || errors.Is(err, ErrArchiveTooLarge)
}

// Decode 在边界处校验并解码导出内容。
// 顶层必须是数组；数组中不是对象的元素会被替换为空会话（仍计入会话总数）并记录警告，不会中断整个导出。
func Decode(r io.Reader) ([]model.Conversation, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, ErrNotArray
	}

	convs := make([]model.Conversation, 0)
	skipped := 0
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		var conv model.Conversation
		if !isJSONObject(raw) || json.Unmarshal(raw, &conv) != nil {
			skipped++
			convs = append(convs, model.Conversation{})
			continue
		}
		convs = append(convs, conv)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: 数组之后存在多余内容", ErrMalformed)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("total", len(convs)).Msg("导出中存在无法解析的会话记录，已按空会话处理")
	}
	return convs, nil
}

// DecodeFile 根据文件名或内容识别 .json 或官方导出的 .zip 压缩包。
func DecodeFile(name string, data []byte) ([]model.Conversation, error) {
	if strings.EqualFold(path.Ext(name), ".zip") || bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return decodeArchive(data)
	}
	return Decode(bytes.NewReader(data))
}

func decodeArchive(data []byte) ([]model.Conversation, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: 无法读取压缩包: %v", ErrMalformed, err)
	}

	limit := MaxArchiveBytes
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != ConversationsFile {
			continue
		}
		if limit > 0 && f.UncompressedSize64 > uint64(limit) {
			return nil, ErrArchiveTooLarge
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("打开 %s 失败: %w", f.Name, err)
		}
		defer rc.Close()

		if limit <= 0 {
			return Decode(rc)
		}
		// 头部记录的大小可以伪造，读取时再限制一次
		cr := &cappedReader{r: rc, remaining: limit + 1}
		convs, err := Decode(cr)
		if cr.exceeded() {
			return nil, ErrArchiveTooLarge
		}
		return convs, err
	}
	return nil, ErrNoConversations
}

// cappedReader 最多放行 remaining 个字节，超出上限时返回 ErrArchiveTooLarge
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		return 0, ErrArchiveTooLarge
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}

// remaining 初始为 limit+1，读满说明内容超过 limit
func (c *cappedReader) exceeded() bool {
	return c.remaining <= 0
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
