package transport

// PaginationQuery 定义了列表请求的通用分页参数。
type PaginationQuery struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ReportQuery 报告类请求的时区参数，为空时使用服务端配置。
type ReportQuery struct {
	TZ string `form:"tz"`
}

// SeriesQuery 时间序列请求参数。
type SeriesQuery struct {
	ReportQuery
	Granularity string `form:"granularity,default=daily"`
	Merged      bool   `form:"merged"`
}

// GroupPageQuery 会话分组分页参数。
type GroupPageQuery struct {
	ReportQuery
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=10"`
}

// WordCloudQuery 词云请求参数。
type WordCloudQuery struct {
	Limit int `form:"limit,default=100"`
}

// DownloadQuery 报告下载参数。
type DownloadQuery struct {
	ReportQuery
	Format string `form:"format,default=json"`
}

// SchedulerRequest 定时扫描配置。
type SchedulerRequest struct {
	Enabled     bool `json:"enabled"`
	IntervalMin int  `json:"interval_minutes"`
}
