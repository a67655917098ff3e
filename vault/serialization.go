// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vault

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docent/core"
)

var (
	tagsSer   = ord.NewSliceSer[string](ord.String)
	vectorSer = ord.NewSliceSer[float32](raw.Float32)
)

// DocumentMUS serializes core.Document values. Timestamps are stored as
// Unix microseconds and restored in UTC.
var DocumentMUS documentSer

type documentSer struct{}

var _ mus.Serializer[core.Document] = documentSer{}

func (documentSer) Marshal(d core.Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.ID, bs)
	n += ord.String.Marshal(d.Type, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.ObservedAt, bs[n:])
	n += ord.String.Marshal(d.Body, bs[n:])
	n += tagsSer.Marshal(d.Tags, bs[n:])
	n += varint.Int64.Marshal(d.CreatedAt.UnixMicro(), bs[n:])
	return
}

func (documentSer) Unmarshal(bs []byte) (d core.Document, n int, err error) {
	var n1 int
	d.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	d.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.ObservedAt, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Body, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Tags, n1, err = tagsSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (documentSer) Size(d core.Document) (size int) {
	size = ord.String.Size(d.ID)
	size += ord.String.Size(d.Type)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.ObservedAt)
	size += ord.String.Size(d.Body)
	size += tagsSer.Size(d.Tags)
	size += varint.Int64.Size(d.CreatedAt.UnixMicro())
	return
}

func (documentSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 5; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	if n1, err = tagsSer.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

// EmbeddingRecord is a stored embedding keyed by (document id, model name).
type EmbeddingRecord struct {
	DocID     string
	ModelName string
	Vector    []float32
	CreatedAt time.Time
}

// EmbeddingRecordMUS serializes EmbeddingRecord values.
var EmbeddingRecordMUS embeddingRecordSer

type embeddingRecordSer struct{}

var _ mus.Serializer[EmbeddingRecord] = embeddingRecordSer{}

func (embeddingRecordSer) Marshal(r EmbeddingRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.DocID, bs)
	n += ord.String.Marshal(r.ModelName, bs[n:])
	n += vectorSer.Marshal(r.Vector, bs[n:])
	n += varint.Int64.Marshal(r.CreatedAt.UnixMicro(), bs[n:])
	return
}

func (embeddingRecordSer) Unmarshal(bs []byte) (r EmbeddingRecord, n int, err error) {
	var n1 int
	r.DocID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.ModelName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (embeddingRecordSer) Size(r EmbeddingRecord) (size int) {
	size = ord.String.Size(r.DocID)
	size += ord.String.Size(r.ModelName)
	size += vectorSer.Size(r.Vector)
	size += varint.Int64.Size(r.CreatedAt.UnixMicro())
	return
}

func (embeddingRecordSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 2; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	if n1, err = vectorSer.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, DocumentMUS.Size(*doc))
	DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
func MarshalEmbeddingRecord(rec *EmbeddingRecord) []byte {
	buf := make([]byte, EmbeddingRecordMUS.Size(*rec))
	EmbeddingRecordMUS.Marshal(*rec, buf)
	return buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (*EmbeddingRecord, error) {
	rec, _, err := EmbeddingRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &rec, nil
}
