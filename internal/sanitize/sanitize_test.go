package sanitize

import "testing"

func TestContent(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "buy milk", "buy milk"},
		{"script tag removed", "before<script>alert(1)</script>after", "beforeafter"},
		{"script tag with attributes", `<script type="text/javascript">x()</script>hi`, "hi"},
		{"script tag case insensitive", "<SCRIPT>x()</SCRIPT>hi", "hi"},
		{"javascript protocol stripped", "click javascript:alert(1)", "click alert(1)"},
		{"data protocol stripped", "data:text/html,x", "text/html,x"},
		{"html escaped", "a < b & c > d", "a &lt; b &amp; c &gt; d"},
		{"whitespace collapsed", "  too \t many\n\nspaces  ", "too many spaces"},
		{"only script becomes empty", "<script>alert(1)</script>", ""},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Content(tc.input); got != tc.want {
				t.Fatalf("Content(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestMap(t *testing.T) {
	out := Map(map[string]any{
		"title": "buy <script>x</script>milk",
		"count": 3,
	})
	if out["title"] != "buy milk" {
		t.Fatalf("title = %q, want %q", out["title"], "buy milk")
	}
	if out["count"] != 3 {
		t.Fatalf("non-string values must pass through, got %v", out["count"])
	}
}

func TestMapNil(t *testing.T) {
	if out := Map(nil); out != nil {
		t.Fatalf("Map(nil) = %v, want nil", out)
	}
}
