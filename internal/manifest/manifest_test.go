package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- helpers ---

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func readBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func localPaths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.LocalPath
	}
	return out
}

const sha1 = "5e10f95394d586b36da35bf5d8776f22c3e12dc7"
const sha2 = "4b4cf9c22413206d6dd9cbe54dd5d6c37ebb3dfe"

// --- New ---

func TestNew_Empty(t *testing.T) {
	t.Parallel()
	r := New()
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if len(r.Entries()) != 0 {
		t.Error("Entries() not empty")
	}
}

// --- Upsert / Get ---

func TestRegistry_Upsert_InsertAndGet(t *testing.T) {
	t.Parallel()
	r := New()
	e := Entry{LocalPath: "doc.md", Remote: "https://example.org/repo.git", FilePath: "README.md", SHA: sha1}
	r.Upsert(e)

	got, ok := r.Get("doc.md")
	if !ok {
		t.Fatal("Get(doc.md) not found after Upsert")
	}
	if got != e {
		t.Errorf("Get(doc.md) = %+v, want %+v", got, e)
	}
}

func TestRegistry_Upsert_ReplacesInPlace(t *testing.T) {
	t.Parallel()
	r := New()
	r.Upsert(Entry{LocalPath: "a", Remote: "r", FilePath: "fa", SHA: sha1})
	r.Upsert(Entry{LocalPath: "b", Remote: "r", FilePath: "fb", SHA: sha1})
	r.Upsert(Entry{LocalPath: "a", Remote: "r", FilePath: "fa", SHA: sha2})

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if got := localPaths(r.Entries()); got[0] != "a" || got[1] != "b" {
		t.Errorf("order after replace = %v, want [a b]", got)
	}
	if e, _ := r.Get("a"); e.SHA != sha2 {
		t.Errorf("a.SHA = %q, want %q", e.SHA, sha2)
	}
}

func TestRegistry_Get_Missing(t *testing.T) {
	t.Parallel()
	if _, ok := New().Get("ghost"); ok {
		t.Error("Get(ghost) reported found on empty registry")
	}
}

// --- Delete ---

func TestRegistry_Delete_Existing(t *testing.T) {
	t.Parallel()
	r := New()
	for _, p := range []string{"a", "b", "c"} {
		r.Upsert(Entry{LocalPath: p, Remote: "r", FilePath: p, SHA: sha1})
	}
	if !r.Delete("b") {
		t.Fatal("Delete(b) = false, want true")
	}
	if _, ok := r.Get("b"); ok {
		t.Error("b still present after Delete")
	}
	if got := localPaths(r.Entries()); strings.Join(got, ",") != "a,c" {
		t.Errorf("entries after Delete = %v, want [a c]", got)
	}
	// Index must follow the shifted slice.
	if e, ok := r.Get("c"); !ok || e.FilePath != "c" {
		t.Errorf("Get(c) after Delete = %+v, %v", e, ok)
	}
}

func TestRegistry_Delete_Nonexistent(t *testing.T) {
	t.Parallel()
	if New().Delete("ghost") {
		t.Error("Delete(ghost) = true on empty registry")
	}
}

func TestRegistry_Entries_IsCopy(t *testing.T) {
	t.Parallel()
	r := New()
	r.Upsert(Entry{LocalPath: "a", Remote: "r", FilePath: "f", SHA: sha1})
	entries := r.Entries()
	entries[0].SHA = "mutated"
	if e, _ := r.Get("a"); e.SHA != sha1 {
		t.Errorf("registry mutated through Entries(): SHA = %q", e.SHA)
	}
}

// --- Load ---

func TestLoad_MissingFile_ReturnsEmptyRegistry(t *testing.T) {
	t.Parallel()
	r, err := Load(filepath.Join(t.TempDir(), ".git-file"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 0 {
		t.Error("expected empty registry for missing file")
	}
}

func TestLoad_ValidINI(t *testing.T) {
	t.Parallel()
	content := `[doc.md]
remote=https://example.org/repo.git
file_path=README.md
sha=` + sha1 + `

[scripts/lint.sh]
remote = git@example.org:tools/ci.git
file_path = bin/lint.sh
sha = ` + sha2 + `
`
	r, err := Load(writeTempFile(t, ".git-file", content))
	if err != nil {
		t.Fatal(err)
	}
	if got := localPaths(r.Entries()); strings.Join(got, ",") != "doc.md,scripts/lint.sh" {
		t.Fatalf("entries = %v", got)
	}
	doc, _ := r.Get("doc.md")
	if doc.Remote != "https://example.org/repo.git" || doc.FilePath != "README.md" || doc.SHA != sha1 {
		t.Errorf("doc.md = %+v", doc)
	}
	lint, _ := r.Get("scripts/lint.sh")
	if lint.Remote != "git@example.org:tools/ci.git" || lint.FilePath != "bin/lint.sh" || lint.SHA != sha2 {
		t.Errorf("scripts/lint.sh = %+v", lint)
	}
}

func TestLoad_SkipsIncompleteSections(t *testing.T) {
	t.Parallel()
	content := `[partial]
remote=https://example.org/repo.git

[full]
remote=https://example.org/repo.git
file_path=a
sha=` + sha1 + `
`
	r, err := Load(writeTempFile(t, ".git-file", content))
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if _, ok := r.Get("partial"); ok {
		t.Error("incomplete section should be skipped")
	}
}

func TestLoad_DottedSectionDoesNotInherit(t *testing.T) {
	t.Parallel()
	content := `[doc]
remote=https://example.org/a.git
file_path=a
sha=` + sha1 + `

[doc.md]
remote=https://example.org/b.git
file_path=b
`
	r, err := Load(writeTempFile(t, ".git-file", content))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Get("doc.md"); ok {
		t.Error("doc.md borrowed its sha from parent section doc")
	}
}

func TestLoad_InvalidINI(t *testing.T) {
	t.Parallel()
	r, err := Load(writeTempFile(t, ".git-file", "[unterminated\nremote=x\n"))
	if !errors.Is(err, ErrUnparsable) {
		t.Fatalf("Load(invalid): err = %v, want ErrUnparsable", err)
	}
	if r == nil || r.Len() != 0 {
		t.Error("Load(invalid) should still return an empty registry")
	}
}

// --- Save + Roundtrip ---

func TestSave_Roundtrip(t *testing.T) {
	t.Parallel()
	r1 := New()
	r1.Upsert(Entry{LocalPath: "z.txt", Remote: "https://example.org/repo.git#frag", FilePath: "docs/z.txt", SHA: sha1})
	r1.Upsert(Entry{LocalPath: "a.txt", Remote: "/srv/git/repo", FilePath: "a;b.txt", SHA: sha2})

	path := tempPath(t, ".git-file")
	if err := r1.Save(path); err != nil {
		t.Fatal(err)
	}

	r2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := localPaths(r2.Entries()); strings.Join(got, ",") != "z.txt,a.txt" {
		t.Errorf("order after roundtrip = %v, want [z.txt a.txt]", got)
	}
	for _, want := range r1.Entries() {
		got, ok := r2.Get(want.LocalPath)
		if !ok {
			t.Errorf("%s missing after roundtrip", want.LocalPath)
			continue
		}
		if got != want {
			t.Errorf("%s after roundtrip = %+v, want %+v", want.LocalPath, got, want)
		}
	}
}

func TestSave_Format(t *testing.T) {
	t.Parallel()
	r := New()
	r.Upsert(Entry{LocalPath: "doc.md", Remote: "https://example.org/repo.git", FilePath: "README.md", SHA: sha1})

	path := tempPath(t, ".git-file")
	if err := r.Save(path); err != nil {
		t.Fatal(err)
	}
	got := string(readBytes(t, path))
	for _, line := range []string{
		"[doc.md]",
		"remote=https://example.org/repo.git",
		"file_path=README.md",
		"sha=" + sha1,
	} {
		if !strings.Contains(got, line+"\n") {
			t.Errorf("saved registry missing line %q:\n%s", line, got)
		}
	}
}

func TestSave_OverwritesAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, ".git-file")
	if err := os.WriteFile(path, []byte("[old]\nremote=x\nfile_path=y\nsha="+sha1+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := New()
	r.Upsert(Entry{LocalPath: "new", Remote: "x", FilePath: "y", SHA: sha2})
	if err := r.Save(path); err != nil {
		t.Fatal(err)
	}

	got := string(readBytes(t, path))
	if strings.Contains(got, "[old]") {
		t.Errorf("old section survived Save:\n%s", got)
	}
	items, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("directory holds %d files after Save, want 1", len(items))
	}
}

func TestSave_EmptyRegistry(t *testing.T) {
	t.Parallel()
	path := tempPath(t, ".git-file")
	if err := New().Save(path); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(readBytes(t, path))); got != "" {
		t.Errorf("empty registry saved as %q", got)
	}
}

func TestSave_UnwritableDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing", ".git-file")
	if err := New().Save(path); err == nil {
		t.Error("Save into a missing directory: expected error, got nil")
	}
}

func TestSave_Deterministic(t *testing.T) {
	t.Parallel()
	r := New()
	r.Upsert(Entry{LocalPath: "b", Remote: "r", FilePath: "b", SHA: sha1})
	r.Upsert(Entry{LocalPath: "a", Remote: "r", FilePath: "a", SHA: sha2})

	var reference []byte
	for i := 0; i < 10; i++ {
		path := tempPath(t, ".git-file")
		if err := r.Save(path); err != nil {
			t.Fatal(err)
		}
		data := readBytes(t, path)
		if i == 0 {
			reference = data
		} else if !bytes.Equal(data, reference) {
			t.Fatalf("iteration %d: output differs:\ngot:\n%s\nwant:\n%s", i, data, reference)
		}
	}
}

// --- EncodeTOML ---

func TestEncodeTOML_RegistryOrder(t *testing.T) {
	t.Parallel()
	r := New()
	r.Upsert(Entry{LocalPath: "zeta.md", Remote: "https://example.org/z.git", FilePath: "Z.md", SHA: sha1})
	r.Upsert(Entry{LocalPath: "alpha.md", Remote: "https://example.org/a.git", FilePath: "A.md", SHA: sha2})

	var buf bytes.Buffer
	if err := r.EncodeTOML(&buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	posZ := strings.Index(got, `["zeta.md"]`)
	posA := strings.Index(got, `["alpha.md"]`)
	if posZ < 0 || posA < 0 || posZ > posA {
		t.Errorf("tables missing or out of order (z=%d a=%d):\n%s", posZ, posA, got)
	}
	if !strings.Contains(got, `sha = "`+sha1+`"`) {
		t.Errorf("sha not encoded:\n%s", got)
	}
}

func TestSave_RejectsDefaultSectionName(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, ".git-file", "[keep]\nremote=x\nfile_path=y\nsha="+sha1+"\n")
	before := readBytes(t, path)

	r := New()
	r.Upsert(Entry{LocalPath: "DEFAULT", Remote: "x", FilePath: "DEFAULT.md", SHA: sha1})
	err := r.Save(path)
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("Save with DEFAULT entry: got %v, want ErrReservedName", err)
	}
	if !bytes.Equal(readBytes(t, path), before) {
		t.Error("registry file changed after a rejected Save")
	}
}

func TestSave_Roundtrip_NamesCloseToDefaultSection(t *testing.T) {
	t.Parallel()
	r1 := New()
	for _, name := range []string{"default", "Default", "sub/DEFAULT", "DEFAULT.md"} {
		r1.Upsert(Entry{LocalPath: name, Remote: "x", FilePath: "DEFAULT.md", SHA: sha1})
	}

	path := tempPath(t, ".git-file")
	if err := r1.Save(path); err != nil {
		t.Fatal(err)
	}
	r2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := localPaths(r2.Entries()), localPaths(r1.Entries()); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("entries after roundtrip = %v, want %v", got, want)
	}
}

func TestValidateLocalPath(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		ok    bool
	}{
		{"DEFAULT", false},
		{"default", true},
		{"docs/DEFAULT", true},
		{"README", true},
	}
	for _, tc := range cases {
		if err := ValidateLocalPath(tc.input); (err == nil) != tc.ok {
			t.Errorf("ValidateLocalPath(%q) = %v, want ok=%v", tc.input, err, tc.ok)
		}
	}
}
