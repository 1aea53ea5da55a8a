package types

import "testing"

func TestExportQuery_Normalize(t *testing.T) {
	q := ExportQuery{Limit: 0, Offset: -3}.Normalize()
	if q.Limit != DefaultExportLimit || q.Offset != 0 {
		t.Errorf("期望 {%d 0}, 实际得到 %+v", DefaultExportLimit, q)
	}

	q = ExportQuery{Limit: 5, Offset: 10}.Normalize()
	if q.Limit != 5 || q.Offset != 10 {
		t.Errorf("合法参数不应被修改, 实际得到 %+v", q)
	}
}
