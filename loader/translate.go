package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var includeRegex = regexp.MustCompile(`^\s*include\s+"([^"]+)"\s*;`)

const maxIncludeDepth = 16

// Translate inlines include statements so the parser sees one flat
// program. The standard gate header stays as is, the parser knows it.
func Translate(src string, dirs []string) (string, error) {
	return translate(src, dirs, 0)
}

func translate(src string, dirs []string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("include nesting deeper than %d, probably a cycle", maxIncludeDepth)
	}
	var sb strings.Builder
	for _, line := range strings.Split(src, "\n") {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			sb.WriteString(line)
			sb.WriteString("\n")
			continue
		}
		name := m[1]
		if name == "qelib1.inc" {
			sb.WriteString(line)
			sb.WriteString("\n")
			continue
		}
		body, err := findInclude(name, dirs)
		if err != nil {
			return "", err
		}
		inlined, err := translate(body, dirs, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(inlined)
	}
	return sb.String(), nil
}

func findInclude(name string, dirs []string) (string, error) {
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		b, err := os.ReadFile(path)
		if err == nil {
			return string(b), nil
		}
	}
	return "", fmt.Errorf("include file %q not found in %v", name, dirs)
}
