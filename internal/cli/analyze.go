package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/afumu/gptrace/internal/analyzer"
	"github.com/afumu/gptrace/internal/config"
	"github.com/afumu/gptrace/internal/model"
	"github.com/afumu/gptrace/web/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type analyzeOptions struct {
	format   string
	page     int
	pageSize int
	export   string
}

func NewAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "分析导出文件并输出报告",
		Long: `一次性分析 conversations.json 或导出压缩包，不写入数据库。
FILE 为 - 时从标准输入读取。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "输出格式: text|json|yaml")
	cmd.Flags().IntVar(&opts.page, "page", 1, "会话分组的页码")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", analyzer.DefaultPageSize, "每页会话数")
	cmd.Flags().StringVarP(&opts.export, "export", "o", "", "同时把报告写入文件，格式由扩展名决定（csv/xlsx/docx/pdf/yaml/json）")

	return cmd
}

func runAnalyze(out io.Writer, file string, opts *analyzeOptions) error {
	format := strings.ToLower(opts.format)
	switch format {
	case "text", "", "json", "yaml", "yml":
	default:
		return fmt.Errorf("不支持的输出格式: %s", opts.format)
	}

	data, err := readInput(file)
	if err != nil {
		return err
	}
	convs, err := analyzer.DecodeFile(file, data)
	if err != nil {
		return err
	}

	loc, err := config.ParseLocation(viper.GetString(config.KeyTimezone))
	if err != nil {
		return err
	}
	report := analyzer.New(analyzer.WithLocation(loc)).Analyze(convs)

	if opts.export != "" {
		if err := exportReport(report, opts.export); err != nil {
			return err
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml", "yml":
		b, err := render.YAML(report)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	default:
		page := analyzer.Paginate(report.Groups, opts.page, opts.pageSize)
		_, err := io.WriteString(out, renderText(report, page))
		return err
	}
}

func readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return data, nil
}

func exportReport(report *model.Report, path string) error {
	format, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	b, err := render.Render(report, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	return nil
}
