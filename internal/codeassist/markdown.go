package codeassist

import (
	"regexp"
	"strings"
)

var (
	// reOuterOpen matches the opening line of a fence around the whole reply.
	reOuterOpen = regexp.MustCompile("^```[ \t]*(markdown|md)?$")
	reComment   = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// CleanDocs tidies provider markdown. A fence wrapping the whole reply is
// unwrapped, and outside code blocks HTML comments are dropped and blank
// runs collapse to one empty line. Code blocks are kept byte for byte.
func CleanDocs(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	lines := unwrapOuterFence(strings.Split(text, "\n"))

	out := make([]string, 0, len(lines))
	prevBlank := false
	emitProse := func(chunk []string) {
		cleaned := reComment.ReplaceAllString(strings.Join(chunk, "\n"), "")
		for _, l := range strings.Split(cleaned, "\n") {
			blank := strings.TrimSpace(l) == ""
			if blank && prevBlank {
				continue
			}
			if blank {
				l = ""
			}
			out = append(out, l)
			prevBlank = blank
		}
	}

	var prose []string
	for i := 0; i < len(lines); i++ {
		marker, ok := fenceMarker(lines[i])
		if !ok {
			prose = append(prose, lines[i])
			continue
		}
		if len(prose) > 0 {
			emitProse(prose)
			prose = prose[:0]
		}
		out = append(out, lines[i])
		for i+1 < len(lines) {
			i++
			out = append(out, lines[i])
			if closesFence(lines[i], marker) {
				break
			}
		}
		prevBlank = false
	}
	if len(prose) > 0 {
		emitProse(prose)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// unwrapOuterFence drops a fence around the whole reply. A bare fence is
// unwrapped only when nothing inside is fenced; a markdown fence also when
// the inner fences open with a language and nest cleanly.
func unwrapOuterFence(lines []string) []string {
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return lines
	}
	m := reOuterOpen.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return lines
	}
	inner := lines[1 : len(lines)-1]
	depth := 0
	for _, l := range inner {
		marker, ok := fenceMarker(l)
		if !ok {
			continue
		}
		if m[1] == "" {
			return lines
		}
		if info := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(l), marker[:1])); info != "" {
			depth++
			continue
		}
		// A bare fence here would close the outer block early.
		if depth == 0 {
			return lines
		}
		depth--
	}
	if depth != 0 {
		return lines
	}
	return inner
}

// fenceMarker returns the run of backticks or tildes opening a code block.
func fenceMarker(line string) (string, bool) {
	l := strings.TrimSpace(line)
	for _, ch := range []string{"`", "~"} {
		if !strings.HasPrefix(l, ch+ch+ch) {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, ch))
		return l[:n], true
	}
	return "", false
}

func closesFence(line, marker string) bool {
	l := strings.TrimSpace(line)
	if !strings.HasPrefix(l, marker) {
		return false
	}
	return strings.TrimSpace(strings.TrimLeft(l, marker[:1])) == ""
}
