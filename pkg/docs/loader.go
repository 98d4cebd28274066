package docs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// RawDocument is a loaded source file before chunking.
type RawDocument struct {
	SourcePath string
	Name       string
	Text       string
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// CleanText normalizes line endings and collapses runs of blank lines.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r", "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// LoadFile reads a single document. PDF text is extracted page by page;
// anything else is treated as plain text.
func LoadFile(path string) (*RawDocument, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPdfText(path)
	default:
		text, err = readTextFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return &RawDocument{
		SourcePath: path,
		Name:       filepath.Base(path),
		Text:       CleanText(text),
	}, nil
}

// LoadFolder reads every regular file in a folder, skipping empty documents.
// Results are sorted by name so repeated ingests see the same order.
func LoadFolder(folder string) ([]*RawDocument, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	var loaded []*RawDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		doc, err := LoadFile(filepath.Join(folder, entry.Name()))
		if err != nil {
			return nil, err
		}
		if doc.Text == "" {
			continue
		}
		loaded = append(loaded, doc)
	}

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].Name < loaded[j].Name })
	return loaded, nil
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func extractPdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
