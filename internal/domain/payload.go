package domain

import (
	"encoding/json"
	"fmt"
)

// Payload is the configuration data of a component. The concrete type is
// selected by the component's Type; unknown types decode to GenericPayload.
type Payload interface {
	Kind() ComponentType
	clonePayload() Payload
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type HeroPayload struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	CTA             *Link  `json:"cta,omitempty"`
}

func (HeroPayload) Kind() ComponentType { return ComponentTypeHero }

func (p HeroPayload) clonePayload() Payload {
	if p.CTA != nil {
		cta := *p.CTA
		p.CTA = &cta
	}
	return p
}

type HeaderPayload struct {
	Logo   string `json:"logo,omitempty"`
	Menu   []Link `json:"menu,omitempty"`
	Sticky bool   `json:"sticky,omitempty"`
}

func (HeaderPayload) Kind() ComponentType { return ComponentTypeHeader }

func (p HeaderPayload) clonePayload() Payload {
	p.Menu = append([]Link(nil), p.Menu...)
	return p
}

type FooterColumn struct {
	Title string `json:"title"`
	Links []Link `json:"links,omitempty"`
}

type FooterPayload struct {
	Columns   []FooterColumn `json:"columns,omitempty"`
	Copyright string         `json:"copyright,omitempty"`
}

func (FooterPayload) Kind() ComponentType { return ComponentTypeFooter }

func (p FooterPayload) clonePayload() Payload {
	cols := make([]FooterColumn, len(p.Columns))
	for i, c := range p.Columns {
		c.Links = append([]Link(nil), c.Links...)
		cols[i] = c
	}
	p.Columns = cols
	return p
}

// CardsPayload renders a grid of listing cards fed by an API endpoint.
type CardsPayload struct {
	Title   string `json:"title,omitempty"`
	Source  string `json:"source,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Columns int    `json:"columns,omitempty"`
}

func (CardsPayload) Kind() ComponentType { return ComponentTypeCards }

func (p CardsPayload) clonePayload() Payload { return p }

type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Required bool   `json:"required,omitempty"`
}

type FormPayload struct {
	Title       string      `json:"title,omitempty"`
	Fields      []FormField `json:"fields,omitempty"`
	SubmitLabel string      `json:"submitLabel,omitempty"`
	Endpoint    string      `json:"endpoint,omitempty"`
}

func (FormPayload) Kind() ComponentType { return ComponentTypeForm }

func (p FormPayload) clonePayload() Payload {
	p.Fields = append([]FormField(nil), p.Fields...)
	return p
}

type TextPayload struct {
	Body  string `json:"body"`
	Align string `json:"align,omitempty"`
}

func (TextPayload) Kind() ComponentType { return ComponentTypeText }

func (p TextPayload) clonePayload() Payload { return p }

// GenericPayload keeps the raw fields of a component type this package does
// not model.
type GenericPayload struct {
	Type   ComponentType
	Fields map[string]any
}

func (p GenericPayload) Kind() ComponentType { return p.Type }

func (p GenericPayload) clonePayload() Payload {
	p.Fields = CloneFields(p.Fields)
	return p
}

func (p GenericPayload) MarshalJSON() ([]byte, error) {
	if p.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Fields)
}

// NewPayload returns the zero payload for a component type.
func NewPayload(t ComponentType) Payload {
	switch t {
	case ComponentTypeHero:
		return HeroPayload{}
	case ComponentTypeHeader:
		return HeaderPayload{}
	case ComponentTypeFooter:
		return FooterPayload{}
	case ComponentTypeCards:
		return CardsPayload{}
	case ComponentTypeForm:
		return FormPayload{}
	case ComponentTypeText:
		return TextPayload{}
	default:
		return GenericPayload{Type: t, Fields: map[string]any{}}
	}
}

// DecodePayload decodes raw JSON into the payload type owned by t.
func DecodePayload(t ComponentType, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return NewPayload(t), nil
	}
	var (
		p   Payload
		err error
	)
	switch t {
	case ComponentTypeHero:
		var v HeroPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ComponentTypeHeader:
		var v HeaderPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ComponentTypeFooter:
		var v FooterPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ComponentTypeCards:
		var v CardsPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ComponentTypeForm:
		var v FormPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ComponentTypeText:
		var v TextPayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		fields := map[string]any{}
		err = json.Unmarshal(raw, &fields)
		p = GenericPayload{Type: t, Fields: fields}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}

// PayloadFromFields converts a loosely-typed map (palette input, MCP
// arguments) into the typed payload for t.
func PayloadFromFields(t ComponentType, fields map[string]any) (Payload, error) {
	if len(fields) == 0 {
		return NewPayload(t), nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s fields: %w", t, err)
	}
	return DecodePayload(t, raw)
}

// CloneFields deep-copies a JSON-like map.
func CloneFields(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
