package vcedit

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MarshalJSON encodes the delta as
//
//	{"type":"paragraph-insert","kind":0,"index":1,"payload":{...}}
//
// The kind is written both by name and by number.
func (d Delta) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "type", d.Kind.String()); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "kind", int(d.Kind)); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "index", d.Index); err != nil {
		return nil, err
	}

	switch {
	case d.Paragraph != nil:
		raw, err := d.Paragraph.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(out, "payload", raw)
	case d.Section != nil:
		return sjson.SetBytes(out, "payload", d.Section)
	}
	return out, nil
}

// UnmarshalJSON decodes a delta written by MarshalJSON. The "type" field may
// hold either the kind name or its number; "kind" is used when "type" is absent.
func (d *Delta) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid delta json", ErrPayload)
	}
	r := gjson.ParseBytes(data)

	var kind any
	switch t := r.Get("type"); t.Type {
	case gjson.String:
		kind = t.Str
	case gjson.Number:
		kind = int(t.Int())
	default:
		k := r.Get("kind")
		if k.Type != gjson.Number {
			return fmt.Errorf("%w: missing delta type", ErrUnknownKind)
		}
		kind = int(k.Int())
	}
	k, err := toKind(kind)
	if err != nil {
		return err
	}

	var payload any
	if p := r.Get("payload"); p.Exists() && p.Type != gjson.Null {
		if k.IsSection() {
			payload = Section{Start: int(p.Get("start").Int()), Class: p.Get("class").String()}
		} else {
			var para Paragraph
			if err := para.UnmarshalJSON([]byte(p.Raw)); err != nil {
				return err
			}
			payload = para
		}
	}

	nd, err := NewDelta(k, int(r.Get("index").Int()), payload)
	if err != nil {
		return err
	}
	*d = nd
	return nil
}

// MarshalJSON encodes the paragraph as {"type":"p","text":"...","markups":[...]}.
func (p Paragraph) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "type", p.Type()); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "text", p.text); err != nil {
		return nil, err
	}
	if len(p.markups) > 0 {
		if out, err = sjson.SetBytes(out, "markups", p.markups); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UnmarshalJSON decodes a paragraph written by MarshalJSON.
func (p *Paragraph) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid paragraph json", ErrPayload)
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return fmt.Errorf("%w: paragraph must be an object", ErrPayload)
	}

	var markups []Markup
	r.Get("markups").ForEach(func(_, m gjson.Result) bool {
		markups = append(markups, Markup{
			Type:  m.Get("type").String(),
			Start: int(m.Get("start").Int()),
			End:   int(m.Get("end").Int()),
			Href:  m.Get("href").String(),
		})
		return true
	})
	*p = NewParagraph(r.Get("type").String(), r.Get("text").String(), markups...)
	return nil
}
