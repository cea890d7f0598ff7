// Package sidcat loads a YANG SID file (RFC 9595's assigned-number map) and
// exposes the identifier↔SID, identifier→type, and list-key lookups the
// rest of the coreconf packages are built on.
package sidcat

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/samsirohi11/coreconf/cferrors"
	"github.com/samsirohi11/coreconf/yangtype"
)

// Catalog is a parsed SID file: the bidirectional identifier↔SID index,
// the per-identifier YANG type table, and the SID→key-SIDs table used to
// serialize YANG list keys.
type Catalog struct {
	ModuleName     string
	ModuleRevision string
	ModulePrefix   string

	sids       map[string]int64
	ids        map[int64]string
	types      map[string]yangtype.Type
	keyMapping map[int64][]int64
}

type rawItem struct {
	Identifier string `json:"identifier"`
	Sid        int64  `json:"sid"`
	Type       any    `json:"type,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	Status     string `json:"status,omitempty"`
}

type rawFile struct {
	ModuleName     string             `json:"module-name"`
	ModuleRevision string             `json:"module-revision"`
	Item           []rawItem          `json:"item"`
	Items          []rawItem          `json:"items,omitempty"`
	KeyMapping     map[string][]int64 `json:"key-mapping,omitempty"`
}

// LoadFile parses a SID catalog from a JSON file on disk.
func LoadFile(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, cferrors.Wrap(cferrors.KindInvalidSidFile, fmt.Sprintf("reading %s", path), err)
	}
	return Parse(content)
}

// Parse builds a Catalog from the raw JSON bytes of a SID file. The
// "item"/"items" key alias and a missing "key-mapping" are both accepted,
// matching the original loader's leniency.
func Parse(content []byte) (*Catalog, error) {
	var raw rawFile
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, cferrors.Wrap(cferrors.KindInvalidSidFile, "parsing SID file JSON", err)
	}

	items := raw.Item
	if len(items) == 0 && len(raw.Items) > 0 {
		items = raw.Items
	}

	sids := make(map[string]int64, len(items))
	ids := make(map[int64]string, len(items))
	types := make(map[string]yangtype.Type, len(items))

	for _, item := range items {
		sids[item.Identifier] = item.Sid
		ids[item.Sid] = item.Identifier
		if item.Type != nil {
			types[item.Identifier] = yangtype.FromSIDType(item.Type)
		}
	}

	keyMapping := make(map[int64][]int64, len(raw.KeyMapping))
	for k, v := range raw.KeyMapping {
		sid, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		keyMapping[sid] = v
	}

	return &Catalog{
		ModuleName:     raw.ModuleName,
		ModuleRevision: raw.ModuleRevision,
		ModulePrefix:   "/" + raw.ModuleName + ":",
		sids:           sids,
		ids:            ids,
		types:          types,
		keyMapping:     keyMapping,
	}, nil
}

// Sid returns the SID assigned to an identifier path.
func (c *Catalog) Sid(identifier string) (int64, bool) {
	sid, ok := c.sids[identifier]
	return sid, ok
}

// Identifier returns the identifier path assigned to a SID.
func (c *Catalog) Identifier(sid int64) (string, bool) {
	id, ok := c.ids[sid]
	return id, ok
}

// Type returns the YANG type declared for an identifier path, if any.
func (c *Catalog) Type(identifier string) (yangtype.Type, bool) {
	t, ok := c.types[identifier]
	return t, ok
}

// TypeForSid is a convenience wrapper resolving identifier, then type.
func (c *Catalog) TypeForSid(sid int64) (yangtype.Type, bool) {
	identifier, ok := c.Identifier(sid)
	if !ok {
		return yangtype.Type{}, false
	}
	return c.Type(identifier)
}

// Keys returns the ordered key SIDs for a YANG list entry SID.
func (c *Catalog) Keys(listSid int64) ([]int64, bool) {
	keys, ok := c.keyMapping[listSid]
	return keys, ok
}

// Entry is one identifier/SID/type row, as reported by Catalog.All.
type Entry struct {
	Identifier string
	Sid        int64
	Type       yangtype.Type
}

// All returns every identifier/SID pair in the catalog, unordered.
func (c *Catalog) All() []Entry {
	entries := make([]Entry, 0, len(c.sids))
	for identifier, sid := range c.sids {
		entries = append(entries, Entry{Identifier: identifier, Sid: sid, Type: c.types[identifier]})
	}
	return entries
}

// SidResolver adapts the catalog's identifier lookup to yangtype.SidResolver.
func (c *Catalog) SidResolver() yangtype.SidResolver {
	return func(identifier string) (int64, bool) {
		return c.Sid(c.ModulePrefix + identifier)
	}
}

// IdentifierResolver adapts the catalog's SID lookup to
// yangtype.IdentifierResolver, stripping the module prefix since
// identityref values are rendered as "module:bare-name".
func (c *Catalog) IdentifierResolver() yangtype.IdentifierResolver {
	return func(sid int64) (string, bool) {
		full, ok := c.Identifier(sid)
		if !ok {
			return "", false
		}
		if len(full) > len(c.ModulePrefix) && full[:len(c.ModulePrefix)] == c.ModulePrefix {
			return full[len(c.ModulePrefix):], true
		}
		return full, true
	}
}
