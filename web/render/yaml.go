package render

import (
	"encoding/json"
	"fmt"

	"github.com/afumu/gptrace/internal/model"
	"gopkg.in/yaml.v3"
)

// YAML 先按 JSON 字段名序列化，再转成块风格的 YAML，字段顺序保持不变
func YAML(report *model.Report) ([]byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("序列化报告失败: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("转换YAML失败: %w", err)
	}
	blockStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("写入YAML失败: %w", err)
	}
	return out, nil
}

// blockStyle 清除 JSON 带来的流式和引号风格
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
