package links

import "testing"

func TestClassify(t *testing.T) {
	const base = "https://garden.example/notes/index/"
	cases := []struct {
		raw      string
		internal bool
		path     string
	}{
		{"/notes/zettel", true, "/notes/zettel"},
		{"other", true, "/notes/index/other"},
		{"../sibling/?q=1#top", true, "/notes/sibling/"},
		{"https://garden.example:443/x", true, "/x"},
		{"HTTPS://Garden.Example/y", true, "/y"},
		{"#section", true, "/notes/index/"},
		{"http://garden.example/x", false, ""},
		{"https://elsewhere.example/x", false, ""},
		{"https://garden.example:8443/x", false, ""},
		{"mailto:someone@garden.example", false, ""},
		{"http://[::1", false, ""},
		{"%zz", false, ""},
	}
	c, err := NewClassifier(base)
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	for _, tc := range cases {
		path, internal := c.Classify(tc.raw)
		if internal != tc.internal {
			t.Fatalf("%q: expected internal=%v, got %v", tc.raw, tc.internal, internal)
		}
		if path != tc.path {
			t.Fatalf("%q: expected path %q, got %q", tc.raw, tc.path, path)
		}
	}
}

func TestClassifyBadBase(t *testing.T) {
	if _, err := NewClassifier("relative/only"); err == nil {
		t.Fatalf("expected error for relative base")
	}
	if _, err := NewClassifier("::not a url"); err == nil {
		t.Fatalf("expected error for an unparsable base")
	}
}
