package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

const (
	keyRemote   = "remote"
	keyFilePath = "file_path"
	keySHA      = "sha"
)

var (
	// ErrUnparsable marks a registry file that exists but could not be read as INI.
	ErrUnparsable = errors.New("registry file is not valid INI")
	// ErrReservedName marks a local path the INI format cannot hold as a section.
	ErrReservedName = errors.New("local path is reserved by the registry format")
)

func init() {
	// The registry is hand-editable; write "key=value" without padding.
	ini.PrettyFormat = false
}

// Entry is one tracked file.
type Entry struct {
	LocalPath string `toml:"-"`
	Remote    string `toml:"remote"`
	FilePath  string `toml:"file_path"`
	SHA       string `toml:"sha"`
}

// Registry is the ordered set of tracked entries, keyed by local path.
// It is the in-memory form of the .git-file INI file.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Load reads the registry at path.
// A missing file yields an empty registry and no error. A file that cannot be
// parsed yields an empty registry together with an error wrapping
// ErrUnparsable; callers may carry on with the empty registry.
func Load(path string) (*Registry, error) {
	r := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return r, fmt.Errorf("%w: reading %s: %v", ErrUnparsable, path, err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:  "=",
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return r, fmt.Errorf("%w: parsing %s: %v", ErrUnparsable, path, err)
	}

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		// KeysHash only holds the section's own keys; Key() would fall back
		// to a parent section for names containing dots.
		keys := sec.KeysHash()
		e := Entry{
			LocalPath: sec.Name(),
			Remote:    keys[keyRemote],
			FilePath:  keys[keyFilePath],
			SHA:       keys[keySHA],
		}
		if e.Remote == "" || e.FilePath == "" || e.SHA == "" {
			continue
		}
		r.Upsert(e)
	}

	return r, nil
}

// ValidateLocalPath reports whether localPath can be stored as a section.
// The name of the INI default section is written without a header and would
// not survive a reload.
func ValidateLocalPath(localPath string) error {
	if localPath == ini.DefaultSection {
		return fmt.Errorf("%w: %s", ErrReservedName, localPath)
	}
	return nil
}

// Save writes every entry as a section, in registry order, replacing path.
// The file is written next to path and renamed into place.
func (r *Registry) Save(path string) error {
	f := ini.Empty()
	for _, e := range r.entries {
		if err := ValidateLocalPath(e.LocalPath); err != nil {
			return err
		}
		sec, err := f.NewSection(e.LocalPath)
		if err != nil {
			return fmt.Errorf("encoding entry %s: %w", e.LocalPath, err)
		}
		sec.Key(keyRemote).SetValue(e.Remote)
		sec.Key(keyFilePath).SetValue(e.FilePath)
		sec.Key(keySHA).SetValue(e.SHA)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// Get returns the entry tracked under localPath.
func (r *Registry) Get(localPath string) (Entry, bool) {
	i, ok := r.index[localPath]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Upsert inserts e, or replaces the entry with the same local path in place.
func (r *Registry) Upsert(e Entry) {
	if i, ok := r.index[e.LocalPath]; ok {
		r.entries[i] = e
		return
	}
	r.index[e.LocalPath] = len(r.entries)
	r.entries = append(r.entries, e)
}

// Delete removes the entry for localPath. Returns true if it existed.
func (r *Registry) Delete(localPath string) bool {
	i, ok := r.index[localPath]
	if !ok {
		return false
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	delete(r.index, localPath)
	for j := i; j < len(r.entries); j++ {
		r.index[r.entries[j].LocalPath] = j
	}
	return true
}

// Entries returns a copy of all entries in registry order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of tracked entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// EncodeTOML writes the registry as a TOML document, one table per local path.
func (r *Registry) EncodeTOML(w io.Writer) error {
	// toml tables are emitted in key order; the registry order is kept by
	// encoding each entry as its own single-table document.
	for i, e := range r.entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		doc := map[string]Entry{e.LocalPath: e}
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encoding %s: %w", e.LocalPath, err)
		}
	}
	return nil
}
