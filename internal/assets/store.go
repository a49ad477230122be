package assets

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record describes one stored asset as exposed to clients.
type Record struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Type     string `json:"type,omitempty"`
}

// Store lists, saves and deletes assets. Writes are last-write-wins; there is
// no locking between concurrent uploads of the same name.
type Store struct {
	resolver *Resolver
	urlBase  string
}

// NewStore creates a store publishing URLs under urlBase (e.g. "/assets").
func NewStore(resolver *Resolver, urlBase string) *Store {
	return &Store{resolver: resolver, urlBase: urlBase}
}

func (s *Store) Resolver() *Resolver {
	return s.resolver
}

// EnsureDirs creates the directory for every kind.
func (s *Store) EnsureDirs() error {
	for _, k := range []Kind{KindOverlay, KindAudio} {
		if err := os.MkdirAll(s.resolver.Dir(k), 0755); err != nil {
			return fmt.Errorf("create %s dir: %w", k, err)
		}
	}
	return nil
}

// List returns the assets of kind k with an allowed extension, sorted by
// filename. A missing directory yields an empty list.
func (s *Store) List(k Kind) ([]Record, error) {
	entries, err := os.ReadDir(s.resolver.Dir(k))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", k, err)
	}

	spec := Spec(k)
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !spec.Allows(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		records = append(records, s.record(k, e.Name(), info.Size()))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Filename < records[j].Filename })
	return records, nil
}

// Save validates filename against the kind's allow-list and writes r to the
// kind directory under the filename's base name.
func (s *Store) Save(k Kind, filename string, r io.Reader) (Record, error) {
	name := norm.NFC.String(filepath.Base(strings.TrimSpace(filename)))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return Record{}, ErrMissingFilename
	}
	spec := Spec(k)
	if !spec.Allows(name) {
		return Record{}, fmt.Errorf("%w: use %s", ErrExtensionRejected, strings.Join(spec.Allowed, ", "))
	}

	dst := filepath.Join(s.resolver.Dir(k), name)
	f, err := os.Create(dst)
	if err != nil {
		return Record{}, fmt.Errorf("create %s: %w", name, err)
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return Record{}, fmt.Errorf("write %s: %w", name, err)
	}
	return s.record(k, name, n), nil
}

// Delete removes the asset ref resolves to.
func (s *Store) Delete(k Kind, ref string) error {
	res := s.resolver.Resolve(k, ref)
	if !res.Found {
		return ErrNotFound
	}
	if err := os.Remove(res.Path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", ref, err)
	}
	return nil
}

// Record builds the public record for an existing file of kind k.
func (s *Store) Record(k Kind, filePath string) (Record, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return Record{}, err
	}
	return s.record(k, filepath.Base(filePath), info.Size()), nil
}

func (s *Store) record(k Kind, name string, size int64) Record {
	spec := Spec(k)
	rec := Record{
		ID:       name,
		Filename: name,
		URL:      path.Join(s.urlBase, spec.Subdir, name),
		Size:     size,
	}
	if spec.IDByStem {
		rec.ID = Stem(name)
	}
	if k == KindOverlay {
		rec.Type = MediaType(name)
	}
	return rec
}
