// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package persistence

import (
	"fmt"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tochemey/worldkernel/schema"
	"github.com/tochemey/worldkernel/world"
)

// EntityRecord is the persisted form of an entity.
// Numbers read back as float64 and bytes as base64 strings.
type EntityRecord struct {
	ID         string
	Components map[string]ComponentRecord
}

// ComponentRecord is the persisted form of a component instance
type ComponentRecord struct {
	Version int
	Values  map[string]any
}

// DefinitionRecord is the persisted form of a component definition
type DefinitionRecord struct {
	Name        string
	Version     int
	Fingerprint uint64
	Attributes  []AttributeRecord
}

// AttributeRecord is the persisted form of an attribute
type AttributeRecord struct {
	Name string
	Kind string
}

// codec turns entities into zstd compressed protobuf Structs and
// definitions into protobuf JSON.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		_ = encoder.Close()
		return nil, err
	}
	return &codec{encoder: encoder, decoder: decoder}, nil
}

func (c *codec) close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}

func (c *codec) encodeEntity(entity *world.Entity) ([]byte, error) {
	components := make(map[string]any)
	for _, instance := range entity.Components() {
		components[instance.Component()] = map[string]any{
			"version": instance.Version(),
			"values":  instance.Values(),
		}
	}

	message, err := structpb.NewStruct(map[string]any{
		"id":         entity.ID(),
		"components": components,
	})
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", entity.ID(), err)
	}

	raw, err := proto.Marshal(message)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

func (c *codec) decodeEntity(data []byte) (*EntityRecord, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, err
	}

	message := new(structpb.Struct)
	if err := proto.Unmarshal(raw, message); err != nil {
		return nil, err
	}

	fields := message.AsMap()
	record := &EntityRecord{Components: make(map[string]ComponentRecord)}
	record.ID, _ = fields["id"].(string)

	components, _ := fields["components"].(map[string]any)
	for name, value := range components {
		component, _ := value.(map[string]any)
		version, _ := component["version"].(float64)
		values, _ := component["values"].(map[string]any)
		if values == nil {
			values = make(map[string]any)
		}
		record.Components[name] = ComponentRecord{Version: int(version), Values: values}
	}
	return record, nil
}

func (c *codec) encodeDefinition(definition *schema.Definition) ([]byte, error) {
	attributes := make([]any, 0, len(definition.Attributes()))
	for _, attribute := range definition.Attributes() {
		attributes = append(attributes, map[string]any{
			"name": attribute.Name,
			"kind": attribute.Kind.String(),
		})
	}

	message, err := structpb.NewStruct(map[string]any{
		"name":    definition.Name(),
		"version": definition.Version(),
		// uint64 does not fit a JSON number
		"fingerprint": strconv.FormatUint(definition.Fingerprint(), 16),
		"attributes":  attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", definition.Name(), err)
	}
	return protojson.Marshal(message)
}

func (c *codec) decodeDefinition(data []byte) (*DefinitionRecord, error) {
	message := new(structpb.Struct)
	if err := protojson.Unmarshal(data, message); err != nil {
		return nil, err
	}

	fields := message.AsMap()
	record := new(DefinitionRecord)
	record.Name, _ = fields["name"].(string)
	version, _ := fields["version"].(float64)
	record.Version = int(version)

	fingerprint, _ := fields["fingerprint"].(string)
	parsed, err := strconv.ParseUint(fingerprint, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("component %s: invalid fingerprint: %w", record.Name, err)
	}
	record.Fingerprint = parsed

	attributes, _ := fields["attributes"].([]any)
	for _, value := range attributes {
		attribute, _ := value.(map[string]any)
		name, _ := attribute["name"].(string)
		kind, _ := attribute["kind"].(string)
		record.Attributes = append(record.Attributes, AttributeRecord{Name: name, Kind: kind})
	}
	return record, nil
}
