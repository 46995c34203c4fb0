package links

import (
	"fmt"
	"net/url"
	"strings"
)

// Classifier decides whether an href stays inside the site (and can be
// stacked) or points elsewhere.
type Classifier struct {
	base *url.URL
}

func NewClassifier(base string) (*Classifier, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base address: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base address %q is not absolute", base)
	}
	return &Classifier{base: u}, nil
}

// Classify resolves raw against the base address. Internal links return the
// resolved path. Anything that fails to resolve is external.
func (c *Classifier) Classify(raw string) (string, bool) {
	resolved, err := c.base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if origin(resolved) != origin(c.base) {
		return "", false
	}
	p := resolved.EscapedPath()
	if p == "" {
		p = "/"
	}
	return p, true
}

func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if host == "" {
		// opaque schemes such as mailto: never share an origin
		return ""
	}
	port := u.Port()
	switch {
	case port == "" && scheme == "http":
		port = "80"
	case port == "" && scheme == "https":
		port = "443"
	}
	return scheme + "://" + host + ":" + port
}
