package analyzer

import (
	"testing"

	"github.com/afumu/gptrace/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		msg  *model.Message
		want string
	}{
		{"nil message", nil, ""},
		{"nil content", &model.Message{}, ""},
		{"parts joined", &model.Message{Content: textContent("hello", "world")}, "hello world"},
		{"falsy parts dropped", &model.Message{Content: textContent("a", "", nil, false, 0.0, "b")}, "a b"},
		{"truthy scalars", &model.Message{Content: textContent("n", 3.5, true)}, "n 3.5 true"},
		{"object part with text", &model.Message{Content: textContent(map[string]any{"text": "inner"}, "tail")}, "inner tail"},
		{"object part without text", &model.Message{Content: textContent(map[string]any{"asset_pointer": "file://x"})}, ""},
		{"bare string content", &model.Message{Content: "legacy"}, "legacy"},
		{"parts not a sequence", &model.Message{Content: map[string]any{"parts": "oops"}}, ""},
		{"missing parts", &model.Message{Content: map[string]any{"content_type": "code", "text": "x"}}, ""},
		{"unexpected shape", &model.Message{Content: 42.0}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(tt.msg))
		})
	}
}
