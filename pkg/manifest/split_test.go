package manifest

import (
	"strings"
	"testing"
)

func TestSplitDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "single document",
			content: "kind: Service\nmetadata:\n  name: foo\n",
			want:    []string{"kind: Service\nmetadata:\n  name: foo"},
		},
		{
			name:    "two documents",
			content: "kind: Service\n---\nkind: Deployment\n",
			want:    []string{"kind: Service", "kind: Deployment"},
		},
		{
			name:    "separator with surrounding whitespace",
			content: "a: 1\n  ---  \nb: 2\n",
			want:    []string{"a: 1", "b: 2"},
		},
		{
			name:    "empty blocks dropped",
			content: "---\n\n---\nkind: Service\n---\n",
			want:    []string{"kind: Service"},
		},
		{
			name:    "mid-line separator not split",
			content: "description: uses --- inside a value\n",
			want:    []string{"description: uses --- inside a value"},
		},
		{
			name:    "tabs normalized to two spaces",
			content: "spec:\n\tports:\n\t\t- port: 80\n",
			want:    []string{"spec:\n  ports:\n    - port: 80"},
		},
		{
			name:    "all empty",
			content: "\n---\n\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitDocuments(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d documents, want %d\ngot: %#v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("document %d:\ngot:  %q\nwant: %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Splitting then rejoining reproduces the original text modulo trailing
// blank-line normalization.
func TestSplitJoinRoundTrip(t *testing.T) {
	original := strings.Join([]string{
		"kind: Deployment",
		"metadata:",
		"  name: a",
		"---",
		"kind: Service",
		"metadata:",
		"  name: b",
		"---",
		"kind: ConfigMap",
		"data:",
		"  k: v",
	}, "\n") + "\n"

	docs := SplitDocuments(original)
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	rejoined := JoinDocuments(docs)
	if rejoined != original {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", rejoined, original)
	}

	// Splitting the rejoined text is stable.
	again := SplitDocuments(rejoined)
	for i := range docs {
		if docs[i] != again[i] {
			t.Errorf("second split diverged at document %d", i)
		}
	}
}
