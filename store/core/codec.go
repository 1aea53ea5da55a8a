package core

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// 原始导出体积大、写一次读很少，用 zstd 换压缩率；
// 报告缓存读取频繁，用 lz4 换解压速度。
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// CompressPayload 压缩原始导出内容
func CompressPayload(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/4))
}

// DecompressPayload 解压原始导出内容
func DecompressPayload(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("解压导出内容失败: %w", err)
	}
	return out, nil
}

// CompressReport 压缩报告缓存
func CompressReport(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("压缩报告失败: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("压缩报告失败: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressReport 解压报告缓存
func DecompressReport(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("解压报告失败: %w", err)
	}
	return out, nil
}
