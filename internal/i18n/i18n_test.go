package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetLanguageFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		cookie string
		want   Language
	}{
		{name: "default", url: "/", want: English},
		{name: "query", url: "/?lang=hi", want: Hindi},
		{name: "cookie", url: "/", cookie: "hi", want: Hindi},
		{name: "query beats cookie", url: "/?lang=en", cookie: "hi", want: English},
		{name: "unknown query falls through to cookie", url: "/?lang=fr", cookie: "hi", want: Hindi},
		{name: "unknown everywhere", url: "/?lang=fr", cookie: "de", want: English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}
			if got := GetLanguageFromRequest(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestT(t *testing.T) {
	if got := T(Hindi, "gallery"); got != "गैलरी" {
		t.Errorf("T(hi, gallery) = %q", got)
	}
	if got := T(Language("fr"), "gallery"); got != "Gallery" {
		t.Errorf("fallback = %q", got)
	}
	if got := T(English, "no_such_label"); got != "no_such_label" {
		t.Errorf("missing key = %q", got)
	}
}
