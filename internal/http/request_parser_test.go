package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/views"
)

func TestParsePeriodParams(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantMonth time.Month
		wantYear  int
		wantErr   bool
	}{
		{name: "month name", query: url.Values{"month": {"March"}, "year": {"2024"}}, wantMonth: time.March, wantYear: 2024},
		{name: "month number", query: url.Values{"month": {"11"}, "year": {"2023"}}, wantMonth: time.November, wantYear: 2023},
		{name: "missing year", query: url.Values{"month": {"March"}}, wantErr: true},
		{name: "bad month", query: url.Values{"month": {"Smarch"}, "year": {"2024"}}, wantErr: true},
		{name: "bad year", query: url.Values{"month": {"3"}, "year": {"24"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePeriodParams(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Month != tt.wantMonth || p.Year != tt.wantYear {
				t.Errorf("period = %v, want %d-%02d", p, tt.wantYear, tt.wantMonth)
			}
		})
	}

	t.Run("empty query is the current period", func(t *testing.T) {
		p, err := ParsePeriodParams(url.Values{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != core.CurrentPeriod() {
			t.Errorf("period = %v, want %v", p, core.CurrentPeriod())
		}
	})
}

func TestParseYearParam(t *testing.T) {
	if y, err := ParseYearParam(url.Values{"year": {"2021"}}); err != nil || y != 2021 {
		t.Errorf("year = %d, %v", y, err)
	}
	if y, err := ParseYearParam(url.Values{}); err != nil || y != time.Now().Year() {
		t.Errorf("default year = %d, %v", y, err)
	}
	if _, err := ParseYearParam(url.Values{"year": {"twenty"}}); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestParseListParams(t *testing.T) {
	p := ParseListParams(url.Values{"sort": {"amount"}, "dir": {"desc"}, "q": {" 12 "}})
	if p.Sort.Key != "amount" || p.Sort.Direction != views.ParseDirection("desc") {
		t.Errorf("sort = %+v", p.Sort)
	}
	if p.Search.Column != "amount" || p.Search.Term != "12" {
		t.Errorf("search = %+v", p.Search)
	}

	p = ParseListParams(url.Values{"sort": {"date"}, "column": {"name"}, "q": {"rent"}})
	if p.Search.Column != "name" {
		t.Errorf("explicit column ignored: %+v", p.Search)
	}

	p = ParseListParams(url.Values{})
	if p.Sort.Key != "" || p.Search.Active() {
		t.Errorf("empty query = %+v", p)
	}
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantJSON bool
		want     map[string]string
	}{
		{
			name:     "json with numeric amount",
			body:     `{"name":" Rent ","amount":1200.10,"recurring":true}`,
			wantJSON: true,
			want:     map[string]string{"name": "Rent", "amount": "1200.10", "recurring": "true"},
		},
		{
			name: "form encoded",
			body: "name=Groceries&amount=45.5",
			want: map[string]string{"name": "Groceries", "amount": "45.5"},
		},
		{
			name: "control characters are stripped",
			body: "name=Bad%00Name%07",
			want: map[string]string{"name": "BadName"},
		},
		{
			name: "empty body",
			body: "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			got := p.Values()
			if len(got) != len(tt.want) {
				t.Fatalf("values = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestRequestBodyParser_RawKeepsSpaces(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":" pass word "}`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := p.GetRaw("password"); got != " pass word " {
		t.Errorf("GetRaw = %q", got)
	}
	if got := p.Get("password"); got != "pass word" {
		t.Errorf("Get = %q", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("missing key = %q", got)
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("expected error for truncated JSON")
	}

	big := strings.Repeat("a", maxBodyBytes+10)
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name="+big))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("err = %v, want ErrBodyTooLarge", err)
	}
	// The error sticks across calls.
	if err := p.Parse(); !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("second parse err = %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("a\tb\nc\x00d\x1be"); got != "a\tb\ncde" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
