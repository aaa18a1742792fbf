package eips

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ergoscope/analytics-engine/pkg/models"
)

var (
	eipFilePattern = regexp.MustCompile(`^eip-(\d+)\.md$`)
	titlePattern   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Table))

// index is the immutable snapshot readers see. Replaced wholesale on refresh;
// never mutated in place.
type index struct {
	byNumber map[int]models.EIPDetail
	numbers  []int // ascending
}

// parseDir walks dir for eip-<n>.md files and builds a fresh index.
// Files that cannot be read are skipped; a partially parsed entry is never
// published.
func parseDir(dir string) (*index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	idx := &index{byNumber: make(map[int]models.EIPDetail)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := eipFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		detail, ok := parseDocument(number, string(raw))
		if !ok {
			continue
		}
		idx.byNumber[number] = detail
		idx.numbers = append(idx.numbers, number)
	}

	sort.Ints(idx.numbers)
	return idx, nil
}

// parseDocument extracts title, status, and rendered content from one EIP
// markdown document.
func parseDocument(number int, source string) (models.EIPDetail, bool) {
	title := "Unknown Title"
	if m := titlePattern.FindStringSubmatch(source); m != nil {
		title = strings.TrimSpace(m[1])
	}

	status := extractStatus(source)

	var rendered bytes.Buffer
	if err := renderer.Convert([]byte(source), &rendered); err != nil {
		return models.EIPDetail{}, false
	}

	return models.EIPDetail{
		EIPSummary: models.EIPSummary{Number: number, Title: title, Status: status},
		Content:    rendered.String(),
	}, true
}

// extractStatus finds the first pipe-delimited table row whose label cell is
// `Status` and returns its value cell. Missing status yields "Unknown".
func extractStatus(source string) string {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			continue
		}
		cells := strings.Split(trimmed, "|")
		// A well-formed row splits into at least ["", label, value, ""].
		if len(cells) < 3 {
			continue
		}
		label := strings.TrimSpace(strings.Trim(cells[1], "* "))
		if strings.EqualFold(label, "Status") {
			value := strings.TrimSpace(cells[2])
			if value != "" {
				return value
			}
		}
	}
	return "Unknown"
}
