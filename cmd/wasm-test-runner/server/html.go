package server

import (
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
)

// MissingElements parses the harness page at htmlPath and returns the selectors
// that match nothing in its static markup. Pages that build their result
// elements from script will report them here too.
func MissingElements(htmlPath string, selectors ...string) ([]string, error) {
	f, err := os.Open(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open harness page: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse harness page: %w", err)
	}

	var missing []string
	for _, sel := range selectors {
		if doc.Find(sel).Length() == 0 {
			missing = append(missing, sel)
		}
	}
	return missing, nil
}
