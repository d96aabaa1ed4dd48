package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  http://subiecte.edu.ro/2024/  ", "http://subiecte.edu.ro/2024/"},
		{"[page](http://subiecte.edu.ro/2024/)", "http://subiecte.edu.ro/2024/"},
		{"<http://subiecte.edu.ro/2024/>", "http://subiecte.edu.ro/2024/"},
		{"http://subiecte.edu.ro/2024/,", "http://subiecte.edu.ro/2024/"},
	}
	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	good, bad := SanitizeAndValidateURLs([]string{
		"http://subiecte2025.edu.ro/2025/simulare/simulare_bac_XII/",
		" https://subiecte.edu.ro/2024/bacalaureat/Subiecte_si_bareme/ ",
		"http://subiecte{archive}.edu.ro/2025/",
		"ftp://subiecte.edu.ro/",
		"",
	})
	if len(good) != 2 {
		t.Errorf("valid URLs = %v, want 2", good)
	}
	if len(bad) != 3 {
		t.Errorf("invalid URLs = %v, want 3", bad)
	}
}

func TestContentHash(t *testing.T) {
	if got := ContentHash([]byte("")); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("ContentHash(\"\") = %s", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, true, false).Info("hidden")
	NewLogger(&buf, true, false).Error("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("quiet logger output = %s", out)
	}
}
