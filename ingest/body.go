package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/model"
)

// BodyKind tags the shape an inbound notification body arrived in.
type BodyKind int

const (
	// BodyUnsupported is JSON that is neither an object nor a string.
	BodyUnsupported BodyKind = iota
	// BodyObject is a JSON object.
	BodyObject
	// BodyText is either a JSON string literal (already unquoted) or raw
	// text that is not JSON at all, e.g. a URL-encoded form.
	BodyText
)

func (k BodyKind) String() string {
	switch k {
	case BodyObject:
		return "object"
	case BodyText:
		return "text"
	default:
		return "unsupported"
	}
}

// Body is a classified inbound notification body.
type Body struct {
	Kind   BodyKind
	Object map[string]any
	Text   string
	Raw    []byte
}

// ClassifyBody inspects raw once and records which shape it has.
func ClassifyBody(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	v, err := decodeJSON(trimmed)
	if err != nil {
		return Body{Kind: BodyText, Text: string(trimmed), Raw: raw}
	}
	switch x := v.(type) {
	case map[string]any:
		return Body{Kind: BodyObject, Object: x, Raw: raw}
	case string:
		return Body{Kind: BodyText, Text: x, Raw: raw}
	default:
		return Body{Kind: BodyUnsupported, Raw: raw}
	}
}

// Canonical returns the bytes a sender signs: sorted-key compact JSON for
// objects, the trimmed raw body for everything else.
func (b Body) Canonical() ([]byte, error) {
	if b.Kind != BodyObject {
		return bytes.TrimSpace(b.Raw), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b.Object); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Normalize turns a classified body into a PaymentRecord. Text is tried as
// JSON first and as URL-encoded key/value pairs second.
func Normalize(b Body) (model.PaymentRecord, error) {
	switch b.Kind {
	case BodyObject:
		return recordFromObject(b.Object)
	case BodyText:
		v, err := decodeJSON([]byte(b.Text))
		if err == nil {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, formatError(constants.ResponseInvalidIPNFormat, nil)
			}
			return recordFromObject(obj)
		}
		values, err := url.ParseQuery(b.Text)
		if err != nil {
			return nil, formatError(constants.ResponseInvalidIPNFormat, err)
		}
		rec := make(model.PaymentRecord, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				// repeated keys: last one wins
				rec[k] = vs[len(vs)-1]
			}
		}
		return rec, nil
	default:
		return nil, formatError(constants.ResponseUnsupportedIPNFormat, nil)
	}
}

func recordFromObject(obj map[string]any) (model.PaymentRecord, error) {
	rec := make(model.PaymentRecord, len(obj))
	for k, v := range obj {
		s, ok, err := stringify(v)
		if err != nil {
			return nil, formatError(constants.ResponseInvalidIPNFormat, err)
		}
		if ok {
			rec[k] = s
		}
	}
	return rec, nil
}

// stringify renders a decoded JSON value as record text. null is absent.
func stringify(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, true, nil
	case json.Number:
		return x.String(), true, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}
}

// decodeJSON decodes exactly one JSON value, keeping number literals.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}
