package datafilter

import (
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// Algorithm is a registry entry: a name and a constructor that validates the
// options and returns freshly initialized codec state.
type Algorithm struct {
	Name string
	New  func(opts Options) (Transform, error)
}

// algorithms is filled from init() blocks in the codec files and is safe for
// concurrent lookups from any number of engines.
var algorithms = xsync.NewMap[string, *Algorithm]()

// Register adds an algorithm. Names are matched exactly, so "MD5" and "md5"
// are different algorithms.
func Register(a *Algorithm) error {
	if a == nil || a.Name == "" || a.New == nil {
		return fmt.Errorf("datafilter: Register called with an incomplete algorithm")
	}
	if _, loaded := algorithms.LoadOrStore(a.Name, a); loaded {
		return fmt.Errorf("%w: %q", ErrDuplicateAlgorithm, a.Name)
	}
	return nil
}

func mustRegister(name string, fn func(opts Options) (Transform, error)) {
	if err := Register(&Algorithm{Name: name, New: fn}); err != nil {
		panic(err)
	}
}

// Lookup returns the algorithm registered under name.
func Lookup(name string) (*Algorithm, error) {
	a, ok := algorithms.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAlgorithm, name)
	}
	return a, nil
}

// Algorithms returns the registered names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, algorithms.Size())
	algorithms.Range(func(name string, _ *Algorithm) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// newTransform looks up name and builds its state from opts.
func newTransform(name string, opts Options) (Transform, error) {
	a, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	t, err := a.New(opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}
