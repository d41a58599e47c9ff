package profile

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// RefKind tells stored ids apart from self-describing ones.
type RefKind int

const (
	// RefStored ids are keys into a backend.
	RefStored RefKind = iota
	// RefInline ids carry the whole profile.
	RefInline
)

// Ref is a parsed profile id.
type Ref struct {
	Kind    RefKind
	ID      string
	Payload Payload
	// UpdatedAt is only set for inline refs.
	UpdatedAt time.Time
}

// Valid reports whether the ref can be resolved at all.
// An inline ref that failed to decode is invalid.
func (r Ref) Valid() bool {
	return r.ID != "" && (r.Kind == RefStored || r.Payload.TimeZone != "")
}

type inlineDoc struct {
	TimeZone    string          `json:"timeZone"`
	SpecialDays json.RawMessage `json:"specialDays"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ParseRef classifies id. This is the only place the inline prefix is inspected.
func ParseRef(id string) Ref {
	if !strings.HasPrefix(id, config.EncodedIDPrefix) {
		return Ref{Kind: RefStored, ID: id}
	}

	ref := Ref{Kind: RefInline, ID: id}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(id, config.EncodedIDPrefix))
	if err != nil {
		return ref
	}

	var doc inlineDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.TimeZone == "" {
		return ref
	}

	ref.Payload = Payload{
		TimeZone:    doc.TimeZone,
		SpecialDays: engine.ParseSpecialDaysJSON(string(doc.SpecialDays)),
	}
	ref.UpdatedAt = doc.UpdatedAt
	return ref
}

// EncodeInline builds a self-describing id holding the whole record.
func EncodeInline(p Payload, updatedAt time.Time) (string, error) {
	specials, err := json.Marshal(p.SpecialDays)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(inlineDoc{
		TimeZone:    p.TimeZone,
		SpecialDays: specials,
		UpdatedAt:   updatedAt,
	})
	if err != nil {
		return "", err
	}
	return config.EncodedIDPrefix + base64.RawURLEncoding.EncodeToString(data), nil
}
