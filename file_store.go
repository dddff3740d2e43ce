package assets

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// This file contains code to persist assets in a JSONL file, in a way that is
// still human-readable and git-friendly: one asset per line, in display order,
// with a canonical field order.
//
// The strategy is as follow:
//   Open:   decode the whole file in memory, a missing file is an empty store.
//   Create: append a single line to the file.
//   Others: compute the new list, write it to a temporary file, and rename it
//           over the previous one. The list in memory is replaced only when
//           the rename succeeded.

// maxLineSize bounds a single JSONL line, notes included.
const maxLineSize = 64 << 20

// FileStore is a Store backed by a JSONL file. It also keeps the order.
type FileStore struct {
	mu     sync.Mutex
	path   string
	assets []Asset
	closed bool
}

// OpenFileStore opens the store persisted at path.
// A missing file is an empty store, it will be created on the first write.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, PersistenceError("open", err)
	}
	defer f.Close()

	s.assets, err = DecodeAssets(path, f)
	if err != nil {
		return nil, PersistenceError("open", err)
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string { return s.path }

// DecodeAssets reads assets from a JSONL stream. filename is for error
// messages only.
func DecodeAssets(filename string, r io.Reader) ([]Asset, error) {
	// jasset is the object read from the file using json parser.
	type jasset struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Type     string          `json:"type"`
		Value    decimal.Decimal `json:"value"`
		Currency string          `json:"currency"`
		Location string          `json:"location"`
		Notes    string          `json:"notes"`
	}

	var list []Asset
	seen := make(map[ID]int)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		// Start simply ignoring empty lines.
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var ja jasset
		if err := json.Unmarshal(line, &ja); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: not a correct json: %w", filename, i, err)
		}
		id := ID(ja.ID)
		switch {
		case id == "":
			return nil, fmt.Errorf("parse error %s:%d: missing property %q", filename, i, "id")
		case strings.TrimSpace(ja.Name) == "":
			return nil, fmt.Errorf("parse error %s:%d: missing property %q", filename, i, "name")
		case strings.TrimSpace(ja.Currency) == "":
			return nil, fmt.Errorf("parse error %s:%d: missing property %q", filename, i, "currency")
		}
		if reason := checkValue(ja.Value); reason != "" {
			return nil, fmt.Errorf("parse error %s:%d: property %q %s", filename, i, "value", reason)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("parse error %s:%d: id %s already defined on line %d", filename, i, id, prev)
		}
		seen[id] = i
		list = append(list, Asset{
			ID:       id,
			Name:     ja.Name,
			Type:     ParseAssetType(ja.Type),
			Value:    ja.Value,
			Currency: strings.ToUpper(ja.Currency),
			Location: ja.Location,
			Notes:    ja.Notes,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read error %s: %w", filename, err)
	}
	return list, nil
}

// EncodeAsset writes a single asset as a JSON line.
func EncodeAsset(w io.Writer, a Asset) error {
	var jw jsonObjectWriter
	jw.Append("id", a.ID).
		Append("name", a.Name).
		Append("type", a.Type).
		Append("value", a.Value).
		Append("currency", a.Currency).
		Optional("location", a.Location).
		Optional("notes", a.Notes)
	data, err := jw.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot encode asset %s: %w", a.ID, err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// EncodeAssets writes all assets, one per line.
func EncodeAssets(w io.Writer, list []Asset) error {
	for _, a := range list {
		if err := EncodeAsset(w, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) check(op string) error {
	if s.closed {
		return fmt.Errorf("%s: %w: store %q is closed", op, ErrPersistence, s.path)
	}
	return nil
}

// index returns the position of id, or -1.
func (s *FileStore) index(id ID) int {
	return slices.IndexFunc(s.assets, func(a Asset) bool { return a.ID == id })
}

// write replaces the file content with list, atomically.
func (s *FileStore) write(list []Asset) error {
	dir := filepath.Dir(s.path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	w := bufio.NewWriter(f)
	err = EncodeAssets(w, list)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, s.path)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *FileStore) LoadAll(ctx context.Context) ([]Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("load"); err != nil {
		return nil, err
	}
	return slices.Clone(s.assets), nil
}

func (s *FileStore) Create(ctx context.Context, a Asset) (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("create"); err != nil {
		return "", err
	}
	a.ID = NewID()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", PersistenceError("create", err)
	}
	err = EncodeAsset(f, a)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", PersistenceError("create", err)
	}
	s.assets = append(s.assets, a)
	return a.ID, nil
}

func (s *FileStore) Update(ctx context.Context, id ID, a Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update"); err != nil {
		return err
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	a.ID = id
	list := slices.Clone(s.assets)
	list[i] = a
	if err := s.write(list); err != nil {
		return PersistenceError("update", err)
	}
	s.assets = list
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete"); err != nil {
		return err
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	list := slices.Delete(slices.Clone(s.assets), i, i+1)
	if err := s.write(list); err != nil {
		return PersistenceError("delete", err)
	}
	s.assets = list
	return nil
}

func (s *FileStore) SaveOrder(ctx context.Context, ids []ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("save order"); err != nil {
		return err
	}
	current := make([]ID, len(s.assets))
	byID := make(map[ID]Asset, len(s.assets))
	for i, a := range s.assets {
		current[i] = a.ID
		byID[a.ID] = a
	}
	if err := sameIDs(current, ids); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	list := make([]Asset, len(ids))
	for i, id := range ids {
		list[i] = byID[id]
	}
	if err := s.write(list); err != nil {
		return PersistenceError("save order", err)
	}
	s.assets = list
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
