package domain

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// IdSchemeKind selects which property of a metadata row an incoming
// reference is matched against.
type IdSchemeKind string

const (
	KindID        IdSchemeKind = "ID"
	KindUID       IdSchemeKind = "UID"
	KindCode      IdSchemeKind = "CODE"
	KindName      IdSchemeKind = "NAME"
	KindAttribute IdSchemeKind = "ATTRIBUTE"
)

var (
	ErrUnknownIdScheme   = errors.New("unknown identifier scheme")
	ErrAttributeRequired = errors.New("ATTRIBUTE identifier scheme requires an attribute id")
)

func AsIdSchemeKind(s string) (IdSchemeKind, error) {
	switch IdSchemeKind(s) {
	case KindID, KindUID, KindCode, KindName, KindAttribute:
		return IdSchemeKind(s), nil
	default:
		return IdSchemeKind(s), fmt.Errorf("%w: %s", ErrUnknownIdScheme, s)
	}
}

// IdScheme is a tagged variant of identifier scheme.
//
// Attribute is set only when Kind is KindAttribute, and names the uid of
// the custom attribute whose value is matched.
type IdScheme struct {
	Kind      IdSchemeKind
	Attribute string
}

var (
	SchemeID   = IdScheme{Kind: KindID}
	SchemeUID  = IdScheme{Kind: KindUID}
	SchemeCode = IdScheme{Kind: KindCode}
	SchemeName = IdScheme{Kind: KindName}
)

func SchemeAttribute(attributeId string) IdScheme {
	return IdScheme{Kind: KindAttribute, Attribute: attributeId}
}

func (s IdScheme) String() string {
	if s.Kind == KindAttribute {
		return string(s.Kind) + ":" + s.Attribute
	}
	return string(s.Kind)
}

func (s IdScheme) Validate() error {
	if _, err := AsIdSchemeKind(string(s.Kind)); err != nil {
		return err
	}
	if s.Kind == KindAttribute && s.Attribute == "" {
		return ErrAttributeRequired
	}
	return nil
}

// Identifiable carries the columns an identifier scheme can match against.
//
// AttributeValues is the raw jsonb of the row's custom attribute values,
// shaped as {"<attribute uid>": {"value": "..."}, ...}.
type Identifiable struct {
	Id              int64
	Uid             string
	Code            string
	Name            string
	AttributeValues []byte
}

// Resolve returns the row's key under the scheme.
//
// ok == false means the row is not indexable under this scheme
// (e.g. the attribute value is absent); callers exclude such rows from
// their result maps instead of erroring.
func (s IdScheme) Resolve(row Identifiable) (key string, ok bool) {
	switch s.Kind {
	case KindID:
		if row.Id == 0 {
			return "", false
		}
		return strconv.FormatInt(row.Id, 10), true
	case KindUID:
		return row.Uid, row.Uid != ""
	case KindCode:
		return row.Code, row.Code != ""
	case KindName:
		return row.Name, row.Name != ""
	case KindAttribute:
		if s.Attribute == "" || len(row.AttributeValues) == 0 {
			return "", false
		}
		v, err := jsonparser.GetString(row.AttributeValues, s.Attribute, "value")
		if err != nil || v == "" {
			return "", false
		}
		return v, true
	}
	return "", false
}
