// Package datastore holds an in-memory YANG data tree addressable by SID,
// by slash-separated YANG path, or by an instanceid.Path, and applies the
// get/set/delete operations a coreconf request handler needs.
package datastore

import (
	"strings"
	"sync"

	"github.com/samsirohi11/coreconf/cferrors"
	"github.com/samsirohi11/coreconf/instanceid"
	"github.com/samsirohi11/coreconf/sidcat"
	"github.com/samsirohi11/coreconf/transcode"
)

// Change is one entry of a multi-node update (for iPATCH): a path with
// either a replacement value or nil to mean delete.
type Change struct {
	Path     string
	Value    any
	HasValue bool
}

// Datastore is a mutable, in-memory YANG data tree guarded by a mutex so
// concurrent requests handled by coreconf.Server can share it safely.
type Datastore struct {
	mu      sync.RWMutex
	catalog *sidcat.Catalog
	tc      *transcode.Transcoder
	data    any
}

// New creates an empty datastore (an empty JSON object) over the catalog.
func New(catalog *sidcat.Catalog) *Datastore {
	return &Datastore{
		catalog: catalog,
		tc:      transcode.New(catalog),
		data:    map[string]any{},
	}
}

// WithData creates a datastore pre-populated with the given decoded JSON
// value (normally a map[string]any).
func WithData(catalog *sidcat.Catalog, data any) *Datastore {
	return &Datastore{
		catalog: catalog,
		tc:      transcode.New(catalog),
		data:    data,
	}
}

// Catalog returns the SID catalog the datastore is built on.
func (ds *Datastore) Catalog() *sidcat.Catalog { return ds.catalog }

// GetAll returns the entire data tree.
func (ds *Datastore) GetAll() any {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.data
}

// GetAllCBOR returns the entire data tree encoded as SID-delta CBOR.
func (ds *Datastore) GetAllCBOR() ([]byte, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.tc.EncodeJSON(ds.data)
}

// GetBySid returns the value at the given SID, or (nil, false, nil) if
// absent. An unresolvable SID is reported as an error.
func (ds *Datastore) GetBySid(sid int64) (any, bool, error) {
	identifier, ok := ds.catalog.Identifier(sid)
	if !ok {
		return nil, false, cferrors.IdentifierNotFound(sid)
	}
	return ds.GetByPath(identifier)
}

// GetByPath resolves a slash-separated YANG path against the tree,
// falling back to the bare (module-prefix-stripped) leaf name at each
// level when the qualified key is absent.
func (ds *Datastore) GetByPath(path string) (any, bool, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	parts := splitPath(path)
	if len(parts) == 0 {
		return ds.data, true, nil
	}

	current := ds.data
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		if v, found := m[part]; found {
			current = v
			continue
		}
		leafName := part
		if i := strings.LastIndexByte(part, ':'); i >= 0 {
			leafName = part[i+1:]
		}
		if v, found := m[leafName]; found {
			current = v
			continue
		}
		return nil, false, nil
	}
	return current, true, nil
}

// Get resolves an instance-identifier path.
func (ds *Datastore) Get(path *instanceid.Path) (any, bool, error) {
	if sid, ok := path.AbsoluteSid(); ok {
		return ds.GetBySid(sid)
	}
	if path.IsEmpty() {
		return ds.GetAll(), true, nil
	}
	return nil, false, nil
}

// SetBySid writes a value at the given SID.
func (ds *Datastore) SetBySid(sid int64, value any) error {
	identifier, ok := ds.catalog.Identifier(sid)
	if !ok {
		return cferrors.IdentifierNotFound(sid)
	}
	return ds.SetByPath(identifier, value)
}

// SetByPath writes a value at a slash-separated YANG path, creating
// intermediate containers as needed.
func (ds *Datastore) SetByPath(path string, value any) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.setByPathLocked(path, value)
	return nil
}

func (ds *Datastore) setByPathLocked(path string, value any) {
	parts := splitPath(path)
	if len(parts) == 0 {
		ds.data = value
		return
	}

	root, ok := ds.data.(map[string]any)
	if !ok {
		root = map[string]any{}
		ds.data = root
	}
	current := root

	for i, part := range parts {
		isLast := i == len(parts)-1
		if isLast {
			current[part] = value
			return
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
}

// Set writes a value using an instance-identifier path.
func (ds *Datastore) Set(path *instanceid.Path, value any) error {
	if sid, ok := path.AbsoluteSid(); ok {
		return ds.SetBySid(sid, value)
	}
	if path.IsEmpty() {
		ds.mu.Lock()
		ds.data = value
		ds.mu.Unlock()
		return nil
	}
	return cferrors.New(cferrors.KindResourceNotFound, "invalid path")
}

// DeleteBySid removes the value at the given SID, reporting whether
// anything was removed.
func (ds *Datastore) DeleteBySid(sid int64) (bool, error) {
	identifier, ok := ds.catalog.Identifier(sid)
	if !ok {
		return false, cferrors.IdentifierNotFound(sid)
	}
	return ds.DeleteByPath(identifier)
}

// DeleteByPath removes the value at a slash-separated YANG path.
func (ds *Datastore) DeleteByPath(path string) (bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	parts := splitPath(path)
	if len(parts) == 0 {
		ds.data = map[string]any{}
		return true, nil
	}

	current := ds.data
	for i, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return false, nil
		}
		isLast := i == len(parts)-1
		if isLast {
			if _, found := m[part]; found {
				delete(m, part)
				return true, nil
			}
			return false, nil
		}
		next, found := m[part]
		if !found {
			return false, nil
		}
		current = next
	}
	return false, nil
}

// Delete removes the value addressed by an instance-identifier path.
func (ds *Datastore) Delete(path *instanceid.Path) (bool, error) {
	if sid, ok := path.AbsoluteSid(); ok {
		return ds.DeleteBySid(sid)
	}
	if path.IsEmpty() {
		ds.mu.Lock()
		ds.data = map[string]any{}
		ds.mu.Unlock()
		return true, nil
	}
	return false, nil
}

// ApplyChanges applies a batch of changes in order. A change with
// HasValue false deletes the path; otherwise it sets it.
func (ds *Datastore) ApplyChanges(changes []Change) error {
	for _, c := range changes {
		if c.HasValue {
			if err := ds.SetByPath(c.Path, c.Value); err != nil {
				return err
			}
		} else if _, err := ds.DeleteByPath(c.Path); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a deep copy of the data tree, used by the request
// handler's transactional iPATCH mode to roll back on error.
func (ds *Datastore) Snapshot() any {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return deepCopy(ds.data)
}

// Restore replaces the data tree wholesale, used to roll back to a prior
// Snapshot.
func (ds *Datastore) Restore(snapshot any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data = snapshot
}

func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = deepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = deepCopy(child)
		}
		return out
	default:
		return v
	}
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
