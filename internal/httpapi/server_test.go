package httpapi

import "testing"

func TestIsValidHTTPURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://EXAMPLE.com/path?q=1", true},
		{"HTTPS://example.com", true},
		{"ftp://x", false},
		{"", false},
		{"https://", false},
		{"example.com", false},
	}
	for _, c := range cases {
		if got := isValidHTTPURL(c.in); got != c.want {
			t.Fatalf("isValidHTTPURL(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestIntParam(t *testing.T) {
	if n, err := intParam("", 5); err != nil || n != 5 {
		t.Fatalf("empty should default, got %d %v", n, err)
	}
	if n, err := intParam("0", 5); err != nil || n != 0 {
		t.Fatalf("explicit zero must be kept, got %d %v", n, err)
	}
	if _, err := intParam("x", 5); err == nil {
		t.Fatalf("want error for non-numeric")
	}
}
