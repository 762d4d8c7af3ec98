package search

import (
	"bufio"
	"strings"
)

// FlattenMarkdown turns a markdown text into plain indexable lines. Table
// rows become their non-empty cells joined by spaces, separator rows are
// dropped, heading and list markers are stripped. Lines are joined with
// "\n"; blank input yields "".
func FlattenMarkdown(text string) string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") {
			if row := tableRow(line); row != "" {
				out = append(out, row)
			}
			continue
		}
		if line = stripMarker(line); line != "" {
			out = append(out, line)
		}
	}
	// Lines beyond the buffer limit end the scan; what was read is kept.
	return strings.Join(out, "\n")
}

// tableRow returns the cells of "| a | b |" joined by spaces, or "" for a
// separator row such as "|---|:-:|".
func tableRow(line string) string {
	var cells []string
	sep := true
	for _, c := range strings.Split(strings.Trim(line, "|"), "|") {
		cell := strings.TrimSpace(c)
		if cell == "" {
			continue
		}
		cells = append(cells, cell)
		if strings.Trim(cell, ":-") != "" {
			sep = false
		}
	}
	if sep {
		return ""
	}
	return strings.Join(cells, " ")
}

// stripMarker removes a leading heading, quote or bullet marker.
func stripMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "#"):
		line = strings.TrimLeft(line, "#")
	case strings.HasPrefix(line, ">"):
		line = strings.TrimLeft(line, ">")
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "), strings.HasPrefix(line, "+ "):
		line = line[2:]
	}
	return strings.TrimSpace(line)
}
