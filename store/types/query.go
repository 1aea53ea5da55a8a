package types

// ExportQuery 封装了查询导出记录的参数
type ExportQuery struct {
	Limit  int
	Offset int
}

// DefaultExportLimit 未指定 Limit 时的返回条数
const DefaultExportLimit = 50

// Normalize 修正非法的分页参数
func (q ExportQuery) Normalize() ExportQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultExportLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
