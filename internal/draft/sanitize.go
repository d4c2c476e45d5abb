package draft

import (
	"strings"
)

// preamblePatterns are lead-ins models put before the answer. Each is checked
// as a case-insensitive prefix of the first few non-empty lines.
var preamblePatterns = []string{
	"here is",
	"here's",
	"i'll ",
	"i will ",
	"i've ",
	"i have ",
	"let me ",
	"sure,",
	"sure!",
	"okay,",
	"okay!",
	"certainly",
	"absolutely",
	"of course",
	"based on",
	"looking at",
	"after reviewing",
	"having reviewed",
}

// signoffPatterns are trailing offers of further help.
var signoffPatterns = []string{
	"let me know",
	"feel free to",
	"hope this helps",
	"is there anything",
	"would you like",
	"shall i ",
	"do you want",
	"i can also",
	"if you need",
	"if you'd like",
}

// labelPrefixes are headings models put in front of a summary on the same line.
var labelPrefixes = []string{
	"summary:",
	"**summary:**",
	"**summary**:",
	"tl;dr:",
}

// SanitizeLLMOutput strips preamble, an inline "Summary:" label, and sign-off
// lines from a model reply.
func SanitizeLLMOutput(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return content
	}

	content = stripPreamble(content)
	content = stripSignoff(content)
	content = stripLabel(strings.TrimSpace(content))

	return strings.TrimSpace(content)
}

// stripPreamble removes at most three leading preamble or blank lines.
func stripPreamble(content string) string {
	lines := strings.SplitN(content, "\n", 5)
	stripped := 0

	for stripped < len(lines) && stripped < 3 {
		line := strings.TrimSpace(lines[stripped])
		if line == "" || matchesAnyPrefix(line, preamblePatterns) {
			stripped++
			continue
		}
		break
	}

	if stripped == 0 {
		return content
	}
	return strings.Join(lines[stripped:], "\n")
}

// stripSignoff removes trailing sign-off and blank lines.
func stripSignoff(content string) string {
	lines := strings.Split(content, "\n")

	end := len(lines)
	for end > 0 {
		line := strings.TrimSpace(lines[end-1])
		if line == "" || matchesAnyPrefix(line, signoffPatterns) {
			end--
			continue
		}
		break
	}

	if end == len(lines) {
		return content
	}
	return strings.Join(lines[:end], "\n")
}

func stripLabel(content string) string {
	lower := strings.ToLower(content)
	for _, label := range labelPrefixes {
		if strings.HasPrefix(lower, label) {
			return content[len(label):]
		}
	}
	return content
}

// matchesAnyPrefix reports whether line starts with one of patterns, ignoring case.
func matchesAnyPrefix(line string, patterns []string) bool {
	lower := strings.ToLower(line)
	for _, p := range patterns {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
