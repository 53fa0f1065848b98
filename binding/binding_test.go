package binding

import "testing"

func sampleData() map[string]any {
	return map[string]any{
		"company": map[string]any{"name": "Acme", "year": 2026},
		"rows": []any{
			map[string]any{"label": "revenue"},
			map[string]any{"label": "cost"},
		},
	}
}

func TestInterpolate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"${company.name} 年报", "Acme 年报"},
		{"${company.year}", "2026"},
		{"${rows[1].label}", "cost"},
		{"${missing.path}", "${missing.path}"},
		{"${rows[9].label}", "${rows[9].label}"},
		{"no placeholder", "no placeholder"},
		{"${}", "${}"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, sampleData()); got != c.want {
			t.Errorf("Interpolate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${company.name}", nil); got != "${company.name}" {
		t.Fatalf("缺少数据时应保留占位符: %q", got)
	}
}

func TestLookup(t *testing.T) {
	if v, ok := Lookup(sampleData(), "rows[0].label"); !ok || v != "revenue" {
		t.Fatalf("Lookup 失败: %v %v", v, ok)
	}
	if _, ok := Lookup(sampleData(), "rows[x]"); ok {
		t.Fatalf("非法下标应未命中")
	}
	if _, ok := Lookup(sampleData(), "company.name.deeper"); ok {
		t.Fatalf("穿透标量应未命中")
	}
}
