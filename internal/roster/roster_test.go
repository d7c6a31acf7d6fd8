package roster

import (
	"strings"
	"testing"
)

const sampleAuthors = `{
	"mfreire": {"id": "66/4120", "name": "Manuel Freire"},
	"bfdz": {"id": "f/BFernandez", "name": "Baltasar Fernández"},
	"anna": {"id": "123/4567", "name": "Anna García"}
}`

func TestParse_Valid(t *testing.T) {
	r, err := Parse([]byte(sampleAuthors))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	a, ok := r.Get("mfreire")
	if !ok {
		t.Fatal("Get(mfreire) not found")
	}
	if a.ID != "66/4120" || a.Name != "Manuel Freire" {
		t.Errorf("Get(mfreire) = %+v", a)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "nope"},
		{"empty object", "{}"},
		{"missing id", `{"x": {"name": "X"}}`},
		{"bad id shape", `{"x": {"id": "no-slash"}}`},
		{"too many slashes", `{"x": {"id": "a/b/c"}}`},
		{"username with slash", `{"a/b": {"id": "1/2"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) expected error", tt.data)
			}
		})
	}
}

func TestUsernames_SortedOrder(t *testing.T) {
	r, err := Parse([]byte(sampleAuthors))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := r.Usernames()
	want := []string{"anna", "bfdz", "mfreire"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Usernames() = %v, want %v", got, want)
		}
	}
}

func TestAuthor_HasNumericID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"66/4120", true},
		{"123/4567", true},
		{"f/BFernandez", false},
		{"66/4120a", false},
	}
	for _, tt := range tests {
		a := Author{ID: tt.id}
		if got := a.HasNumericID(); got != tt.want {
			t.Errorf("HasNumericID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestListingHTML(t *testing.T) {
	r, err := Parse([]byte(sampleAuthors))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := r.ListingHTML()
	if !strings.Contains(got, `data-dblpid="66/4120"`) {
		t.Errorf("listing missing dblpid attribute:\n%s", got)
	}
	if !strings.Contains(got, "Baltasar Fernández") {
		t.Errorf("listing missing author name:\n%s", got)
	}
	// Sorted order: anna before bfdz before mfreire.
	if strings.Index(got, "Anna") > strings.Index(got, "Manuel") {
		t.Errorf("listing not in sorted username order:\n%s", got)
	}
}
