package solution

import (
	"bytes"
	"fmt"

	"github.com/dshills/workbench/internal/fspath"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec converts solution documents to and from bytes.
type Codec interface {
	Marshal(doc *Document) ([]byte, error)
	Unmarshal(data []byte, doc *Document) error
}

// CodecFor returns the codec for a solution file, chosen by its suffix.
func CodecFor(fileName fspath.Path) (Codec, error) {
	switch {
	case fileName.HasExtension(".yaml"), fileName.HasExtension(".yml"):
		return YAMLCodec{}, nil
	case fileName.HasExtension(".toml"):
		return TOMLCodec{}, nil
	case fileName.HasExtension(".json"):
		return JSONCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
}

// YAMLCodec reads and writes YAML solution files.
type YAMLCodec struct{}

// Marshal encodes doc with two-space indentation.
func (YAMLCodec) Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into doc. Unknown fields are rejected.
func (YAMLCodec) Unmarshal(data []byte, doc *Document) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(doc)
}

// TOMLCodec reads and writes TOML solution files.
type TOMLCodec struct{}

// Marshal encodes doc.
func (TOMLCodec) Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into doc. Unknown fields are rejected.
func (TOMLCodec) Unmarshal(data []byte, doc *Document) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("toml: %w", err)
	}
	return nil
}
