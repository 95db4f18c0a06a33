package listutil

import (
	"net/url"
	"testing"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		q           url.Values
		wantPage    int
		wantPerPage int
	}{
		{"defaults", url.Values{}, 1, DefaultPerPage},
		{"valid", url.Values{"page": {"3"}, "per_page": {"20"}}, 3, 20},
		{"per_page not offered", url.Values{"per_page": {"25"}}, 1, DefaultPerPage},
		{"negative page", url.Values{"page": {"-1"}}, 1, DefaultPerPage},
		{"garbage", url.Values{"page": {"two"}, "per_page": {"lots"}}, 1, DefaultPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePageParams(tt.q)
			if p.Page != tt.wantPage || p.PerPage != tt.wantPerPage {
				t.Errorf("got %+v, want page=%d per_page=%d", p, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestPageParams_Offset(t *testing.T) {
	if got := (PageParams{Page: 3, PerPage: 20}).Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestParseFilterParams(t *testing.T) {
	q := url.Values{"q": {" ana "}, "status": {"overdue"}, "month": {"3"}, "year": {" "}, "secret": {"x"}}
	fp := ParseFilterParams(q, []string{"status", "month", "year"})

	if fp.Search != "ana" {
		t.Errorf("Search = %q", fp.Search)
	}
	if fp.Get("status") != "overdue" {
		t.Errorf("status = %q", fp.Get("status"))
	}
	if _, ok := fp.Filters["secret"]; ok {
		t.Error("unrecognised key kept")
	}
	if _, ok := fp.Filters["year"]; ok {
		t.Error("blank value kept")
	}
	if n, ok, err := fp.Int("month"); n != 3 || !ok || err != nil {
		t.Errorf("Int(month) = %d, %v, %v", n, ok, err)
	}
	if _, ok, _ := fp.Int("year"); ok {
		t.Error("Int(year) reported present")
	}
	bad := ParseFilterParams(url.Values{"month": {"march"}}, []string{"month"})
	if _, ok, err := bad.Int("month"); !ok || err == nil {
		t.Error("malformed month accepted")
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		wantPage, wantPages  int
	}{
		{"exact", 1, 20, 40, 1, 2},
		{"remainder", 2, 20, 41, 2, 3},
		{"empty", 1, 20, 0, 1, 1},
		{"clamped high", 9, 20, 30, 2, 2},
		{"zero per page", 1, 0, 120, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.Page != tt.wantPage || pi.TotalPages != tt.wantPages || pi.Total != tt.total {
				t.Errorf("got %+v, want page=%d pages=%d", pi, tt.wantPage, tt.wantPages)
			}
		})
	}
}
