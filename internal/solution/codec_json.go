package solution

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// JSONCodec reads and writes JSON solution files.
type JSONCodec struct{}

// Marshal encodes doc as indented JSON.
func (JSONCodec) Marshal(doc *Document) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "format_version", doc.FormatVersion); err != nil {
		return nil, err
	}
	if out, err = setString(out, "id", doc.ID); err != nil {
		return nil, err
	}
	if out, err = setString(out, "name", doc.Name); err != nil {
		return nil, err
	}
	if out, err = appendItems(out, "items", doc.Items); err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(out, &pretty.Options{Indent: "  ", Width: 80}), nil
}

func setString(data []byte, key, value string) ([]byte, error) {
	if value == "" {
		return data, nil
	}
	return sjson.SetBytes(data, key, value)
}

func appendItems(data []byte, key string, items []ItemDoc) ([]byte, error) {
	for _, item := range items {
		raw, err := marshalItem(item)
		if err != nil {
			return nil, err
		}
		if data, err = sjson.SetRawBytes(data, key+".-1", raw); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func marshalItem(item ItemDoc) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "kind", item.Kind); err != nil {
		return nil, err
	}
	for _, kv := range [][2]string{{"id", item.ID}, {"name", item.Name}, {"path", item.Path}, {"type", item.Type}} {
		if out, err = setString(out, kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	if item.Scan {
		if out, err = sjson.SetBytes(out, "scan", true); err != nil {
			return nil, err
		}
	}
	for _, f := range item.Files {
		if out, err = sjson.SetBytes(out, "files.-1", f); err != nil {
			return nil, err
		}
	}
	return appendItems(out, "items", item.Items)
}

// Unmarshal decodes data into doc.
func (JSONCodec) Unmarshal(data []byte, doc *Document) error {
	if !gjson.ValidBytes(data) {
		return errors.New("json: malformed document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return errors.New("json: document is not an object")
	}

	if err := checkKeys(root, "document", documentKeys); err != nil {
		return err
	}

	version := root.Get("format_version")
	if version.Exists() {
		if version.Type != gjson.Number {
			return fmt.Errorf("json: format_version %s is not a number", version.Raw)
		}
		doc.FormatVersion = int(version.Int())
	}
	doc.ID = root.Get("id").String()
	doc.Name = root.Get("name").String()

	items, err := unmarshalItems(root.Get("items"), "items")
	if err != nil {
		return err
	}
	doc.Items = items
	return nil
}

var (
	documentKeys = map[string]bool{"format_version": true, "id": true, "name": true, "items": true}
	itemKeys     = map[string]bool{
		"kind": true, "id": true, "name": true, "path": true,
		"type": true, "scan": true, "files": true, "items": true,
	}
)

// checkKeys rejects object keys outside known, like the YAML and TOML
// decoders do for unknown fields.
func checkKeys(obj gjson.Result, where string, known map[string]bool) error {
	var err error
	obj.ForEach(func(key, _ gjson.Result) bool {
		if !known[key.String()] {
			err = fmt.Errorf("json: unknown field %q in %s", key.String(), where)
			return false
		}
		return true
	})
	return err
}

func unmarshalItems(list gjson.Result, where string) ([]ItemDoc, error) {
	if !list.Exists() {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("json: %s is not an array", where)
	}

	var out []ItemDoc
	for i, v := range list.Array() {
		at := where + "[" + strconv.Itoa(i) + "]"
		if !v.IsObject() {
			return nil, fmt.Errorf("json: %s is not an object", at)
		}
		if err := checkKeys(v, at, itemKeys); err != nil {
			return nil, err
		}
		item := ItemDoc{
			Kind: v.Get("kind").String(),
			ID:   v.Get("id").String(),
			Name: v.Get("name").String(),
			Path: v.Get("path").String(),
			Type: v.Get("type").String(),
			Scan: v.Get("scan").Bool(),
		}
		for _, f := range v.Get("files").Array() {
			item.Files = append(item.Files, f.String())
		}
		children, err := unmarshalItems(v.Get("items"), at+".items")
		if err != nil {
			return nil, err
		}
		item.Items = children
		out = append(out, item)
	}
	return out, nil
}
