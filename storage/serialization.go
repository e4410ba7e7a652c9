// Copyright 2025 Quillon Labs
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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// CollectionMeta is the durable record kept per collection.
type CollectionMeta struct {
	Name      string
	VectorDim int
}

// vectorMUS serializes embedding vectors with raw float32 elements.
var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// PayloadMUS serializes Payload values in MUS format.
var PayloadMUS = payloadSer{}

type payloadSer struct{}

func (payloadSer) Marshal(p Payload, bs []byte) (n int) {
	n = ord.String.Marshal(p.DocumentID, bs)
	n += ord.String.Marshal(p.Title, bs[n:])
	n += varint.Int.Marshal(p.Ordinal, bs[n:])
	n += varint.Int.Marshal(p.TotalChunks, bs[n:])
	n += ord.String.Marshal(p.Text, bs[n:])
	n += varint.Int.Marshal(p.TokenCount, bs[n:])
	return n
}

func (payloadSer) Unmarshal(bs []byte) (p Payload, n int, err error) {
	var n1 int
	if p.DocumentID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if p.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if p.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if p.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if p.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if p.TokenCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (payloadSer) Size(p Payload) (size int) {
	size = ord.String.Size(p.DocumentID)
	size += ord.String.Size(p.Title)
	size += varint.Int.Size(p.Ordinal)
	size += varint.Int.Size(p.TotalChunks)
	size += ord.String.Size(p.Text)
	size += varint.Int.Size(p.TokenCount)
	return size
}

// ItemMUS serializes Item values in MUS format.
var ItemMUS = itemSer{}

type itemSer struct{}

func (itemSer) Marshal(item Item, bs []byte) (n int) {
	n = ord.String.Marshal(item.ID, bs)
	n += vectorMUS.Marshal(item.Vector, bs[n:])
	n += PayloadMUS.Marshal(item.Payload, bs[n:])
	return n
}

func (itemSer) Unmarshal(bs []byte) (item Item, n int, err error) {
	var n1 int
	if item.ID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if item.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if item.Payload, n1, err = PayloadMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (itemSer) Size(item Item) (size int) {
	size = ord.String.Size(item.ID)
	size += vectorMUS.Size(item.Vector)
	size += PayloadMUS.Size(item.Payload)
	return size
}

// MetaMUS serializes CollectionMeta values in MUS format.
var MetaMUS = metaSer{}

type metaSer struct{}

func (metaSer) Marshal(meta CollectionMeta, bs []byte) (n int) {
	n = ord.String.Marshal(meta.Name, bs)
	n += varint.Int.Marshal(meta.VectorDim, bs[n:])
	return n
}

func (metaSer) Unmarshal(bs []byte) (meta CollectionMeta, n int, err error) {
	var n1 int
	if meta.Name, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if meta.VectorDim, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (metaSer) Size(meta CollectionMeta) (size int) {
	size = ord.String.Size(meta.Name)
	size += varint.Int.Size(meta.VectorDim)
	return size
}

// MarshalItem serializes an Item to bytes.
func MarshalItem(item Item) []byte {
	buf := make([]byte, ItemMUS.Size(item))
	ItemMUS.Marshal(item, buf)
	return buf
}

// UnmarshalItem deserializes an Item from bytes.
func UnmarshalItem(data []byte) (Item, error) {
	item, _, err := ItemMUS.Unmarshal(data)
	if err != nil {
		return Item{}, fmt.Errorf("%w: item: %w", ErrSerializationFailed, err)
	}
	return item, nil
}

// MarshalMeta serializes a CollectionMeta to bytes.
func MarshalMeta(meta CollectionMeta) []byte {
	buf := make([]byte, MetaMUS.Size(meta))
	MetaMUS.Marshal(meta, buf)
	return buf
}

// UnmarshalMeta deserializes a CollectionMeta from bytes.
func UnmarshalMeta(data []byte) (CollectionMeta, error) {
	meta, _, err := MetaMUS.Unmarshal(data)
	if err != nil {
		return CollectionMeta{}, fmt.Errorf("%w: collection meta: %w", ErrSerializationFailed, err)
	}
	return meta, nil
}
