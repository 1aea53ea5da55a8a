package render

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/afumu/gptrace/internal/model"
	"github.com/signintech/gopdf"
)

const (
	pdfPageHeight = 841.89 // A4 高度（pt）
	pdfPageWidth  = 595.28
	pdfMarginLeft = 50.0
	pdfMarginTop  = 60.0
	pdfMarginBot  = 60.0
	pdfLineHeight = 18.0
	pdfFontSize   = 10.0
	pdfTitleSize  = 16.0
	pdfHeadSize   = 12.0
	pdfFontName   = "cjk"
)

// FontPath 指定 PDF 使用的字体，为空时在系统目录中查找
var FontPath string

// fontPath 返回当前系统上可用的中文字体
func fontPath() string {
	if FontPath != "" {
		return FontPath
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/System/Library/Fonts/STHeiti Medium.ttc",
			"/System/Library/Fonts/PingFang.ttc",
			"/Library/Fonts/Arial Unicode.ttf",
		}
	case "windows":
		candidates = []string{
			"C:\\Windows\\Fonts\\msyh.ttc",
			"C:\\Windows\\Fonts\\simhei.ttf",
		}
	default:
		candidates = []string{
			"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

type pdfWriter struct {
	pdf *gopdf.GoPdf
	y   float64
}

// PDF 单栏排版，片段之间留白，长行自动换行分页
func PDF(report *model.Report) ([]byte, error) {
	path := fontPath()
	if path == "" {
		return nil, fmt.Errorf("未找到可用于 PDF 的字体")
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFont(pdfFontName, path); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	pdf.AddPage()

	w := &pdfWriter{pdf: pdf, y: pdfMarginTop}
	if err := w.line("ChatGPT 使用报告", pdfTitleSize, 2); err != nil {
		return nil, err
	}
	if err := w.line(reportSubtitle(report), pdfFontSize, 2); err != nil {
		return nil, err
	}

	for _, s := range sections(report) {
		if err := w.line(s.Title, pdfHeadSize, 1.5); err != nil {
			return nil, err
		}
		if len(s.Rows) == 0 {
			if err := w.wrapped("暂无数据"); err != nil {
				return nil, err
			}
		}
		for _, row := range s.Rows {
			if err := w.wrapped(humanLine(s.Header, row)); err != nil {
				return nil, err
			}
		}
		w.y += pdfLineHeight * 0.5
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("写入PDF失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) ensureSpace(h float64) {
	if w.y+h > pdfPageHeight-pdfMarginBot {
		w.pdf.AddPage()
		w.y = pdfMarginTop
	}
}

// line 写一行不换行的文字，advance 为行高倍数
func (w *pdfWriter) line(text string, size, advance float64) error {
	w.ensureSpace(pdfLineHeight * advance)
	if err := w.pdf.SetFont(pdfFontName, "", size); err != nil {
		return fmt.Errorf("设置字体失败: %w", err)
	}
	w.pdf.SetX(pdfMarginLeft)
	w.pdf.SetY(w.y)
	if err := w.pdf.Cell(nil, text); err != nil {
		return fmt.Errorf("写入PDF失败: %w", err)
	}
	w.y += pdfLineHeight * advance
	return nil
}

// wrapped 按页面宽度逐字换行
func (w *pdfWriter) wrapped(text string) error {
	if err := w.pdf.SetFont(pdfFontName, "", pdfFontSize); err != nil {
		return fmt.Errorf("设置字体失败: %w", err)
	}

	maxWidth := pdfPageWidth - pdfMarginLeft*2
	runes := []rune(text)
	for len(runes) > 0 {
		w.ensureSpace(pdfLineHeight)

		end := len(runes)
		for i := 1; i <= len(runes); i++ {
			width, _ := w.pdf.MeasureTextWidth(string(runes[:i]))
			if width > maxWidth {
				end = max(i-1, 1)
				break
			}
		}

		w.pdf.SetX(pdfMarginLeft)
		w.pdf.SetY(w.y)
		if err := w.pdf.Cell(nil, string(runes[:end])); err != nil {
			return fmt.Errorf("写入PDF失败: %w", err)
		}
		w.y += pdfLineHeight
		runes = runes[end:]
	}
	return nil
}
