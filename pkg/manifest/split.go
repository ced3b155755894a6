// Package manifest regroups rendered, possibly templated, resource documents
// by the logical service that owns them.
package manifest

import "strings"

// Separator is the document separator line inside multi-document files.
const Separator = "---"

// SplitDocuments splits a multi-document blob into individual document texts.
// Tabs are normalized to two spaces first (templated indentation sometimes
// mixes tabs). The split happens only on whole lines carrying the separator;
// a "---" inside a value is left alone. Empty blocks between separators are
// dropped silently.
func SplitDocuments(content string) []string {
	content = strings.ReplaceAll(content, "\t", "  ")

	var docs []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		doc := strings.TrimSpace(strings.Join(current, "\n"))
		if doc != "" {
			docs = append(docs, doc)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == Separator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return docs
}

// JoinDocuments is the inverse of SplitDocuments: documents rejoined with the
// separator, ending in a single trailing newline.
func JoinDocuments(docs []string) string {
	return strings.Join(docs, "\n"+Separator+"\n") + "\n"
}
