package schema

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// SqidFactory mints and resolves prefixed ids ("contact_" + opaque
// segment) for the sqid id format (spec §4.2), combining the seeded
// Codec with the TypeRegistry.
type SqidFactory struct {
	codec *Codec
	types *TypeRegistry
}

// NewSqidFactory builds a factory over an already-constructed codec and
// registry. Both are immutable after startup and safe to share.
func NewSqidFactory(codec *Codec, types *TypeRegistry) *SqidFactory {
	return &SqidFactory{codec: codec, types: types}
}

// NewID mints a prefixed id for one document of m. The opaque body
// packs the model's type number, the current timestamp, and a random
// draw; falls back to an empty string (caller lets the Store assign)
// when the model is not registered.
func (f *SqidFactory) NewID(m *ParsedModel) string {
	typeNum, ok := f.types.TypeNum(m.Name)
	if !ok {
		return ""
	}

	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	random := binary.BigEndian.Uint32(b[:])

	body, err := f.codec.Encode(typeNum, nil, time.Now().UnixMilli(), random)
	if err != nil {
		return ""
	}
	return BuildPrefixedID(m, body)
}

// Resolved is a decoded prefixed id with its owning model name.
type Resolved struct {
	Model string
	ID    DecodedID
}

// Decode splits a prefixed id, unpacks the opaque body, and resolves
// the packed type number through the registry. A segment decoding to an
// unknown typeNum yields (nil, false) — spec §4.2.
func (f *SqidFactory) Decode(id string) (*Resolved, bool) {
	_, body, ok := SplitPrefixedID(id)
	if !ok {
		return nil, false
	}
	dec, err := f.codec.Decode(body)
	if err != nil {
		return nil, false
	}
	model, known := f.types.ModelName(dec.TypeNum)
	if !known {
		return nil, false
	}
	return &Resolved{Model: model, ID: *dec}, true
}
