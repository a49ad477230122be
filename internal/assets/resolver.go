package assets

import (
	"os"
	"path/filepath"
	"strings"
)

// Result is the outcome of a lookup. A miss is a normal result, not an error;
// callers decide whether absence is fatal.
type Result struct {
	Path  string
	Found bool
}

func found(path string) Result { return Result{Path: path, Found: true} }

// Resolver maps user-supplied asset ids to files. It only reads the
// filesystem.
type Resolver struct {
	root string
}

// NewResolver creates a resolver over an assets root containing one
// directory per kind.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Dir returns the directory holding assets of kind k.
func (r *Resolver) Dir(k Kind) string {
	return filepath.Join(r.root, Spec(k).Subdir)
}

// Resolve tries, in order: the exact filename, ref plus each probe
// extension, then a directory entry whose stem equals ref.
func (r *Resolver) Resolve(k Kind, ref string) Result {
	return r.resolve(k, ref, false)
}

// ResolveFold is Resolve with a case-insensitive stem scan as the last step.
func (r *Resolver) ResolveFold(k Kind, ref string) Result {
	return r.resolve(k, ref, true)
}

func (r *Resolver) resolve(k Kind, ref string, fold bool) Result {
	if !validRef(ref) {
		return Result{}
	}
	spec := Spec(k)
	dir := r.Dir(k)

	if p := filepath.Join(dir, ref); isFile(p) {
		return found(p)
	}

	for _, ext := range spec.Probe {
		if p := filepath.Join(dir, ref+ext); isFile(p) {
			return found(p)
		}
	}

	if !spec.StemScan {
		return Result{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}
	}
	for _, e := range entries {
		if !e.IsDir() && Stem(e.Name()) == ref {
			return found(filepath.Join(dir, e.Name()))
		}
	}
	if fold {
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(Stem(e.Name()), ref) {
				return found(filepath.Join(dir, e.Name()))
			}
		}
	}
	return Result{}
}

// validRef rejects ids that could escape the kind directory.
func validRef(ref string) bool {
	if ref == "" || ref == "." || ref == ".." {
		return false
	}
	return !strings.ContainsAny(ref, `/\`)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
