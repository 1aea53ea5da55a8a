package wordcloud

import "testing"

func TestAnalyze_EnglishPrompts(t *testing.T) {
	texts := []string{
		"How do I write a goroutine pool?",
		"Explain goroutine leaks, please",
		"Show me the pool code:\n```go\nfunc main() { goroutine() }\n```",
	}
	res := Analyze(texts, 10)

	if res.TotalMessages != 3 {
		t.Errorf("期望 3 条消息, 实际得到 %d", res.TotalMessages)
	}
	if len(res.Words) == 0 {
		t.Fatal("词频结果不应为空")
	}
	// goroutine 和 pool 各出现两次（代码块内的不计），按字母序 goroutine 在前
	if res.Words[0].Text != "goroutine" || res.Words[0].Count != 2 {
		t.Errorf("期望首个词为 goroutine x2, 实际得到 %s x%d", res.Words[0].Text, res.Words[0].Count)
	}
	if res.Words[1].Text != "pool" || res.Words[1].Count != 2 {
		t.Errorf("期望第二个词为 pool x2, 实际得到 %s x%d", res.Words[1].Text, res.Words[1].Count)
	}
	for _, w := range res.Words {
		if w.Text == "how" || w.Text == "please" || w.Text == "func" {
			t.Errorf("停用词或代码关键字不应出现: %s", w.Text)
		}
	}
}

func TestTokenize_MixedScript(t *testing.T) {
	words := tokenize("用户说 don't 2024 Hello")
	want := map[string]bool{"用户": true, "户说": true, "don't": true, "hello": true}
	if len(words) != len(want) {
		t.Fatalf("期望 %d 个词, 实际得到 %v", len(want), words)
	}
	for _, w := range words {
		if !want[w] {
			t.Errorf("意外的词: %s", w)
		}
	}
}

func TestAnalyze_Limit(t *testing.T) {
	res := Analyze([]string{"alpha beta gamma delta"}, 2)
	if len(res.Words) != 2 {
		t.Errorf("期望截断为 2 个词, 实际得到 %d", len(res.Words))
	}
}
