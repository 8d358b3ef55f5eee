package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/accrava/secretsweep/internal/types"
)

// Entry is one key/value pair of a browser store.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	// Err marks a value that could not be turned into text.
	Err error `json:"-"`
}

// Storage is a snapshot of both web storage areas, in enumeration order.
type Storage struct {
	Local   []Entry
	Session []Entry
}

// Units converts the snapshot into scan units, local entries first.
func (s Storage) Units() []types.ScanUnit {
	units := make([]types.ScanUnit, 0, len(s.Local)+len(s.Session))
	for _, e := range s.Local {
		units = append(units, StorageUnit(types.KindLocalStorage, e))
	}
	for _, e := range s.Session {
		units = append(units, StorageUnit(types.KindSessionStorage, e))
	}
	return units
}

// StorageUnit builds the unit for one storage entry.
func StorageUnit(kind types.UnitKind, e Entry) types.ScanUnit {
	return types.ScanUnit{
		Kind:      kind,
		Label:     types.StorageLabel(kind, e.Key),
		Namespace: string(kind),
		Key:       e.Key,
		Content:   e.Value,
		Err:       e.Err,
	}
}

// FromMaps builds a snapshot from plain maps. Keys are sorted since map
// order carries no meaning.
func FromMaps(local, session map[string]string) Storage {
	return Storage{Local: sortedEntries(local), Session: sortedEntries(session)}
}

// StorageCollector yields the units of a fixed snapshot.
type StorageCollector struct {
	Storage Storage
}

func (StorageCollector) Name() string { return "storage" }

func (c StorageCollector) Collect(_ context.Context) ([]types.ScanUnit, error) {
	return c.Storage.Units(), nil
}

// StorageDump reads a storage export written as JSON or YAML:
//
//	{"localStorage": {"k": "v"}, "sessionStorage": {"k": "v"}}
//
// Key order in the file is preserved.
type StorageDump struct {
	Path   string
	Reader io.Reader
}

func (d StorageDump) Name() string {
	if d.Path != "" {
		return "storage:" + d.Path
	}
	return "storage"
}

func (d StorageDump) Collect(_ context.Context) ([]types.ScanUnit, error) {
	r := d.Reader
	if r == nil {
		f, err := os.Open(d.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage dump: %w", err)
		}
		defer f.Close()
		r = f
	}
	s, err := ParseStorage(r)
	if err != nil {
		return nil, err
	}
	return s.Units(), nil
}

// ParseStorage decodes a storage export. Unknown top-level keys are ignored.
func ParseStorage(r io.Reader) (Storage, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Storage{}, nil
		}
		return Storage{}, fmt.Errorf("parse storage dump: %w", err)
	}
	if len(doc.Content) == 0 {
		return Storage{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Storage{}, fmt.Errorf("parse storage dump: top level must be a mapping")
	}
	var s Storage
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, val := root.Content[i].Value, root.Content[i+1]
		switch strings.ToLower(name) {
		case "localstorage", "local":
			entries, err := entriesOf(val)
			if err != nil {
				return Storage{}, fmt.Errorf("%s: %w", name, err)
			}
			s.Local = entries
		case "sessionstorage", "session":
			entries, err := entriesOf(val)
			if err != nil {
				return Storage{}, fmt.Errorf("%s: %w", name, err)
			}
			s.Session = entries
		}
	}
	return s, nil
}

func entriesOf(n *yaml.Node) ([]Entry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a key/value mapping")
	}
	out := make([]Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		e := Entry{Key: n.Content[i].Value}
		v := n.Content[i+1]
		if v.Kind == yaml.ScalarNode {
			e.Value = v.Value
		} else {
			e.Value, e.Err = flatten(v)
		}
		out = append(out, e)
	}
	return out, nil
}

// flatten renders a non-scalar value as JSON text, the form a page would
// have stored it in.
func flatten(n *yaml.Node) (string, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("value is not text: %w", err)
	}
	return string(b), nil
}
