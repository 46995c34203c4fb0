package render

import (
	"strings"
)

// Metadata is what the renderer needs to know about a note before
// converting it.
type Metadata struct {
	Title    string
	HasTitle bool
}

func ParseMetadata(input string) Metadata {
	body, fm := splitFrontmatter(input)
	if h1, ok := firstHeading(body); ok {
		return Metadata{Title: h1, HasTitle: true}
	}
	return Metadata{Title: fm["title"]}
}

func StripFrontmatter(input string) string {
	body, _ := splitFrontmatter(input)
	return body
}

func splitFrontmatter(input string) (string, map[string]string) {
	lines := strings.Split(input, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return input, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return input, nil
	}
	fm := parseFrontmatter(lines[1:end])
	return strings.Join(lines[end+1:], "\n"), fm
}

func parseFrontmatter(lines []string) map[string]string {
	fm := make(map[string]string)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		fm[strings.ToLower(key)] = strings.Trim(val, "\"")
	}
	return fm
}

// firstHeading finds the first level-one ATX heading outside fenced code.
func firstHeading(body string) (string, bool) {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "# ") {
			continue
		}
		text := trimClosingHashes(strings.TrimPrefix(trimmed, "# "))
		if text != "" {
			return text, true
		}
	}
	return "", false
}

func trimClosingHashes(text string) string {
	text = strings.TrimSpace(text)
	i := len(text) - 1
	for i >= 0 && text[i] == '#' {
		i--
	}
	if i < len(text)-1 {
		if i < 0 {
			return ""
		}
		if text[i] == ' ' || text[i] == '\t' {
			text = strings.TrimRight(text[:i], " \t")
		}
	}
	return strings.TrimSpace(text)
}
