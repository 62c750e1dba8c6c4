package storefront

import (
	"bytes"
	"encoding/json"
)

// SourceID accepts the storefront id as either a JSON number or string
type SourceID string

func (id *SourceID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*id = ""
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*id = SourceID(s)
		}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = SourceID(n.String())
	}
	return nil
}

// Tags is the product tag field, which storefronts send either as a
// comma-delimited string or as a list. Exactly one of the shapes is set.
type Tags struct {
	text *string
	list []any
}

// StringTags builds the delimited-string shape
func StringTags(s string) Tags {
	return Tags{text: &s}
}

// ListTags builds the list shape
func ListTags(values ...any) Tags {
	if values == nil {
		values = []any{}
	}
	return Tags{list: values}
}

func (t *Tags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = Tags{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			t.text = &s
		}
	case '[':
		var list []any
		if err := json.Unmarshal(b, &list); err == nil {
			t.list = list
		}
	}
	return nil
}

// Text accepts a JSON string, or the literal of a number or boolean.
// Any other shape decodes as empty.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = ""
	if len(b) == 0 {
		return nil
	}
	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = Text(s)
		}
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err == nil {
			*t = Text(n.String())
		}
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*t = Text(b)
	}
	return nil
}

// Image is an image reference. Storefronts send either an object carrying a
// src URL or the bare URL string.
type Image struct {
	Src Text `json:"src"`
}

func (img *Image) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*img = Image{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			img.Src = Text(s)
		}
	case '{':
		var obj struct {
			Src Text `json:"src"`
		}
		if err := json.Unmarshal(b, &obj); err == nil {
			img.Src = obj.Src
		}
	}
	return nil
}

// List decodes a JSON array element by element. A value that is not an array
// is an empty list, and an element that does not fit T is kept as T's zero value
// so positions are preserved.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(b []byte) error {
	*l = nil
	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil {
		return nil
	}
	out := make(List[T], 0, len(elems))
	for _, el := range elems {
		var v T
		if err := json.Unmarshal(el, &v); err != nil {
			var zero T
			v = zero
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// RawCollection is one record of /collections.json
type RawCollection struct {
	ID          SourceID `json:"id"`
	Title       Text     `json:"title"`
	Handle      Text     `json:"handle"`
	BodyHTML    Text     `json:"body_html"`
	Description Text     `json:"description"`
	PublishedAt Text     `json:"published_at"`
	UpdatedAt   Text     `json:"updated_at"`
	Image       Image    `json:"image"`
}

// RawVariant is a purchase variant of a product
type RawVariant struct {
	Price    json.RawMessage `json:"price"`
	Currency Text            `json:"currency"`
}

// RawProduct is one record of /products.json
type RawProduct struct {
	ID          SourceID         `json:"id"`
	Title       Text             `json:"title"`
	Handle      Text             `json:"handle"`
	ProductType Text             `json:"product_type"`
	Variants    List[RawVariant] `json:"variants"`
	Images      List[Image]      `json:"images"`
	Tags        Tags             `json:"tags"`
}

// Records that are not JSON objects decode as nil entries, so a page keeps
// its length for the short-page check.
type collectionsPage struct {
	Collections List[*RawCollection] `json:"collections"`
}

type productsPage struct {
	Products List[*RawProduct] `json:"products"`
}
