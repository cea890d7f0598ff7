package coreconf

import (
	"github.com/samsirohi11/coreconf/cferrors"
	"github.com/samsirohi11/coreconf/instanceid"
	"github.com/samsirohi11/coreconf/sidcat"
)

// PathChange is one entry of an iPATCH request built by path: a YANG path
// and either a replacement value or HasValue=false to delete.
type PathChange struct {
	Path     string
	Value    any
	HasValue bool
}

// SidChange is the SID-addressed equivalent of PathChange.
type SidChange struct {
	Sid      int64
	Value    any
	HasValue bool
}

// SidValue pairs a resolved SID with its value, as returned by
// RequestBuilder.ParseResponse.
type SidValue struct {
	Sid   int64
	Value any
}

// RequestBuilder constructs CORECONF request payloads and parses
// responses on the client side, resolving YANG paths to SIDs via a
// catalog.
type RequestBuilder struct {
	Catalog *sidcat.Catalog
}

// NewRequestBuilder builds a RequestBuilder over the given catalog.
func NewRequestBuilder(catalog *sidcat.Catalog) *RequestBuilder {
	return &RequestBuilder{Catalog: catalog}
}

// BuildFetch encodes a FETCH payload (application/yang-identifiers+cbor)
// for the given YANG paths.
func (b *RequestBuilder) BuildFetch(paths []string) ([]byte, error) {
	instancePaths := make([]*instanceid.Path, 0, len(paths))
	for _, path := range paths {
		ip, err := instanceid.FromYangPath(path, b.Catalog)
		if err != nil {
			return nil, err
		}
		instancePaths = append(instancePaths, ip)
	}
	return instanceid.EncodeIdentifiers(instancePaths)
}

// BuildFetchSids encodes a FETCH payload for the given SIDs directly.
func (b *RequestBuilder) BuildFetchSids(sids []int64) ([]byte, error) {
	instancePaths := make([]*instanceid.Path, 0, len(sids))
	for _, sid := range sids {
		instancePaths = append(instancePaths, instanceid.FromSid(sid))
	}
	return instanceid.EncodeIdentifiers(instancePaths)
}

// BuildIPatch encodes an iPATCH payload (application/yang-instances+cbor-seq)
// from a list of path-addressed changes.
func (b *RequestBuilder) BuildIPatch(changes []PathChange) ([]byte, error) {
	instances := make([]instanceid.Instance, 0, len(changes))
	for _, c := range changes {
		ip, err := instanceid.FromYangPath(c.Path, b.Catalog)
		if err != nil {
			return nil, err
		}
		if c.HasValue {
			instances = append(instances, instanceid.NewInstance(ip, c.Value))
		} else {
			instances = append(instances, instanceid.DeleteInstance(ip))
		}
	}
	return instanceid.EncodeInstances(instances)
}

// BuildIPatchSids is the SID-addressed equivalent of BuildIPatch.
func (b *RequestBuilder) BuildIPatchSids(changes []SidChange) ([]byte, error) {
	instances := make([]instanceid.Instance, 0, len(changes))
	for _, c := range changes {
		ip := instanceid.FromSid(c.Sid)
		if c.HasValue {
			instances = append(instances, instanceid.NewInstance(ip, c.Value))
		} else {
			instances = append(instances, instanceid.DeleteInstance(ip))
		}
	}
	return instanceid.EncodeInstances(instances)
}

// BuildPost encodes a POST (RPC/action invocation) payload for rpcPath,
// carrying input as the instance value. A nil input is sent as a null
// value, which on the wire is the same {sid: null} entry a delete produces.
func (b *RequestBuilder) BuildPost(rpcPath string, input any) ([]byte, error) {
	ip, err := instanceid.FromYangPath(rpcPath, b.Catalog)
	if err != nil {
		return nil, err
	}
	return instanceid.EncodeInstances([]instanceid.Instance{instanceid.NewInstance(ip, input)})
}

// ParseResponse decodes a FETCH/iPATCH/POST response payload into its
// (SID, value) pairs, dropping entries with no value (deletes/acks).
func (b *RequestBuilder) ParseResponse(cborData []byte) ([]SidValue, error) {
	instances, err := instanceid.DecodeInstances(cborData)
	if err != nil {
		return nil, err
	}

	results := make([]SidValue, 0, len(instances))
	for _, inst := range instances {
		sid, ok := inst.Path.AbsoluteSid()
		if !ok || !inst.HasValue {
			continue
		}
		results = append(results, SidValue{Sid: sid, Value: inst.Value})
	}
	return results, nil
}

// ParseResponseJSON decodes a response payload and re-keys it by YANG
// identifier path instead of SID.
func (b *RequestBuilder) ParseResponseJSON(cborData []byte) (map[string]any, error) {
	values, err := b.ParseResponse(cborData)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any, len(values))
	for _, sv := range values {
		identifier, ok := b.Catalog.Identifier(sv.Sid)
		if !ok {
			return nil, cferrors.IdentifierNotFound(sv.Sid)
		}
		result[identifier] = sv.Value
	}
	return result, nil
}
