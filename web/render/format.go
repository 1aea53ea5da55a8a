package render

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 文档类格式面向阅读，数字带千分位；表格类格式保持原始数值
var printer = message.NewPrinter(language.SimplifiedChinese)

func humanCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case int:
		return printer.Sprintf("%d", x)
	case float64:
		if x == float64(int64(x)) {
			return printer.Sprintf("%d", int64(x))
		}
		return printer.Sprintf("%.2f", x)
	case string:
		return x
	}
	return printer.Sprint(v)
}

func rawCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return printer.Sprint(v)
}
