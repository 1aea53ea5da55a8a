package wordcloud

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 英文单词的最小长度
const minWordLen = 3

var fencedBlock = regexp.MustCompile("```[\\s\\S]*?```")

// WordCloudResult 词云结果
type WordCloudResult struct {
	TotalMessages int         `json:"total_messages"`
	TotalWords    int         `json:"total_words"`
	Words         []*WordItem `json:"words"`
}

// WordItem 词频项
type WordItem struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// 英文停用词表，对话导出以英文为主
var englishStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "you": true, "that": true,
	"this": true, "with": true, "are": true, "was": true, "what": true,
	"how": true, "can": true, "have": true, "not": true, "but": true,
	"from": true, "your": true, "will": true, "would": true, "could": true,
	"should": true, "about": true, "there": true, "their": true, "they": true,
	"them": true, "then": true, "than": true, "when": true, "where": true,
	"which": true, "who": true, "why": true, "into": true, "also": true,
	"just": true, "like": true, "some": true, "any": true, "all": true,
	"more": true, "most": true, "other": true, "such": true, "only": true,
	"its": true, "it's": true, "i'm": true, "don't": true, "does": true,
	"did": true, "been": true, "being": true, "were": true, "has": true,
	"had": true, "him": true, "her": true, "his": true, "she": true,
	"our": true, "out": true, "one": true, "two": true, "use": true,
	"using": true, "please": true, "make": true, "want": true, "need": true,
	"get": true, "give": true, "here": true, "these": true, "those": true,
	"is": true, "it": true, "in": true, "of": true, "to": true,
	"on": true, "an": true, "be": true, "as": true, "at": true,
	"by": true, "or": true, "if": true, "do": true, "so": true,
	"me": true, "my": true, "we": true, "no": true, "up": true,
}

// 中文停用词表
var stopWords = map[string]bool{
	"的": true, "了": true, "是": true, "在": true, "我": true,
	"你": true, "他": true, "她": true, "它": true, "们": true,
	"这": true, "那": true, "有": true, "和": true, "就": true,
	"不": true, "也": true, "都": true, "要": true, "会": true,
	"可以": true, "没有": true, "什么": true, "一个": true, "我们": true,
	"自己": true, "他们": true, "没": true, "很": true, "到": true,
	"说": true, "对": true, "吗": true, "啊": true, "呢": true,
	"吧": true, "嗯": true, "哦": true, "哈": true, "呀": true,
	"嘛": true, "哎": true, "唉": true, "喔": true, "噢": true,
	"把": true, "被": true, "让": true, "给": true, "从": true,
	"去": true, "来": true, "上": true, "下": true, "里": true,
	"中": true, "大": true, "小": true, "多": true, "少": true,
	"个": true, "人": true, "还": true, "能": true, "做": true,
	"看": true, "想": true, "知道": true, "时候": true, "现在": true,
	"因为": true, "所以": true, "但是": true, "如果": true, "这个": true,
	"那个": true, "已经": true, "可能": true, "应该": true, "怎么": true,
	"为什么": true, "这样": true, "那样": true, "一下": true, "一些": true,
	"然后": true, "或者": true, "而且": true, "虽然": true, "不过": true,
	"只是": true, "其实": true, "觉得": true, "比较": true, "一样": true,
}

// Analyze 对文本列表进行词频统计，返回词云结果
func Analyze(texts []string, limit int) *WordCloudResult {
	if limit <= 0 {
		limit = 100
	}

	freq := make(map[string]int)
	totalWords := 0

	for _, text := range texts {
		words := tokenize(text)
		for _, w := range words {
			if !stopWords[w] && !englishStopWords[w] {
				freq[w]++
				totalWords++
			}
		}
	}

	// 转为切片并排序
	items := make([]*WordItem, 0, len(freq))
	for text, count := range freq {
		items = append(items, &WordItem{Text: text, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Text < items[j].Text
	})

	if len(items) > limit {
		items = items[:limit]
	}

	return &WordCloudResult{
		TotalMessages: len(texts),
		TotalWords:    totalWords,
		Words:         items,
	}
}

// tokenize 对文本进行简单分词
// 中文按二元组（bigram）切分；英文按字母数字切分，单词内部允许撇号，
// 代码块会被整体跳过，避免关键字污染词频
func tokenize(text string) []string {
	text = fencedBlock.ReplaceAllString(text, " ")

	var words []string
	var chineseRunes []rune
	var englishWord strings.Builder

	flushEnglish := func() {
		if englishWord.Len() == 0 {
			return
		}
		w := strings.Trim(strings.ToLower(englishWord.String()), "'")
		if utf8.RuneCountInString(w) >= minWordLen && !isNumeric(w) {
			words = append(words, w)
		}
		englishWord.Reset()
	}

	for _, r := range text {
		if isChinese(r) {
			flushEnglish()
			chineseRunes = append(chineseRunes, r)
			continue
		}

		// 处理累积的中文字符，提取二元组
		words = append(words, extractBigrams(chineseRunes)...)
		chineseRunes = chineseRunes[:0]

		if unicode.IsLetter(r) || unicode.IsDigit(r) || (r == '\'' && englishWord.Len() > 0) {
			englishWord.WriteRune(r)
		} else {
			flushEnglish()
		}
	}

	// 处理末尾
	words = append(words, extractBigrams(chineseRunes)...)
	flushEnglish()

	return words
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// extractBigrams 从中文字符序列中提取二元组
func extractBigrams(runes []rune) []string {
	if len(runes) < 2 {
		return nil
	}
	var bigrams []string
	for i := 0; i < len(runes)-1; i++ {
		bigrams = append(bigrams, string(runes[i:i+2]))
	}
	return bigrams
}

// isChinese 判断是否为中文字符
func isChinese(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
