package analyzer

import (
	"sort"

	"github.com/afumu/gptrace/internal/model"
)

const (
	// MaxGroups 最近会话视图最多保留的日期分组数
	MaxGroups = 10
	// DefaultPageSize 最近会话列表的默认每页条数
	DefaultPageSize = 10
)

// GroupByCreationDay 按会话创建日期分组，日期降序，最多保留 MaxGroups 组。
// 同一天内保持导出文件中的顺序；没有有效创建时间的会话不参与分组。
func GroupByCreationDay(convs []FlatConversation, clock Clock) []model.ConversationGroup {
	byDay := make(map[string][]model.ConversationEntry)
	for _, fc := range convs {
		day, ok := clock.Day(fc.CreateTime)
		if !ok {
			continue
		}
		byDay[day] = append(byDay[day], model.ConversationEntry{
			Title:        fc.Title,
			MessageCount: len(fc.Messages),
			FirstMessage: fc.FirstUserMessage,
			ID:           fc.ID,
		})
	}

	groups := make([]model.ConversationGroup, 0, len(byDay))
	for day, entries := range byDay {
		groups = append(groups, model.ConversationGroup{Date: day, Conversations: entries})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date > groups[j].Date
	})

	if len(groups) > MaxGroups {
		groups = groups[:MaxGroups]
	}
	return groups
}

// Paginate 把分组视为一个扁平列表进行分页，一页可以跨越多个日期分组。
// page 会被限制在 [1, totalPages] 内；pageSize <= 0 时使用 DefaultPageSize。
func Paginate(groups []model.ConversationGroup, page, pageSize int) model.GroupPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalItems := 0
	for _, g := range groups {
		totalItems += len(g.Conversations)
	}
	totalPages := (totalItems + pageSize - 1) / pageSize

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize

	result := make([]model.ConversationGroup, 0)
	count := 0
	for _, g := range groups {
		if count >= end {
			break
		}
		n := len(g.Conversations)
		if count+n <= start {
			count += n
			continue
		}

		from := max(0, start-count)
		to := min(n, end-count)
		result = append(result, model.ConversationGroup{
			Date:          g.Date,
			Conversations: g.Conversations[from:to],
		})
		count += n
	}

	return model.GroupPage{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Groups:     result,
	}
}
