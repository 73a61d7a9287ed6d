package input

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadDomains(t *testing.T) {
	content := strings.Join([]string{
		"# fleet domains",
		"",
		"example.com",
		"  padded.example  ",
		"Trailing.Example.",
		"   ",
		"# another comment",
		"UPPER.EXAMPLE",
	}, "\n")

	path := filepath.Join(t.TempDir(), "domains.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	domains, err := ReadDomains(path)
	if err != nil {
		t.Fatalf("ReadDomains() error = %v", err)
	}

	want := []string{"example.com", "padded.example", "trailing.example", "upper.example"}
	if !reflect.DeepEqual(domains, want) {
		t.Errorf("ReadDomains() = %v, want %v", domains, want)
	}
}

func TestReadDomainsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	if err := os.WriteFile(path, []byte("# only comments\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	domains, err := ReadDomains(path)
	if err != nil {
		t.Fatalf("ReadDomains() error = %v", err)
	}
	if len(domains) != 0 {
		t.Errorf("expected no domains, got %v", domains)
	}
}

func TestReadDomainsMissingFile(t *testing.T) {
	_, err := ReadDomains(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}
