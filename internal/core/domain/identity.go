package domain

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Identity keys written by the identity API. Older sessions may carry the
// English spellings (role, name, _id); the accessors accept both.
const (
	FieldID       = "id"
	FieldName     = "nombre"
	FieldEmail    = "email"
	FieldRole     = "rol"
	FieldPhone    = "telefono"
	FieldVerified = "verificado"

	fieldRoleAlt = "role"
	fieldNameAlt = "name"
	fieldIDAlt   = "_id"
)

// Identity is the profile of the logged-in principal. Besides the well-known
// fields it keeps whatever extra keys the identity API returned, so a decode
// followed by an encode preserves the record.
type Identity struct {
	fields map[string]any
	role   Role
}

// NewIdentity builds an identity from a field map. It fails with
// ErrMalformedIdentity when no role tag is present.
func NewIdentity(fields map[string]any) (*Identity, error) {
	raw := rawRole(fields)
	if raw == "" {
		return nil, fmt.Errorf("%w: missing role", ErrMalformedIdentity)
	}
	return &Identity{fields: maps.Clone(fields), role: ParseRole(raw)}, nil
}

// DecodeIdentity parses a persisted identity record.
func DecodeIdentity(data []byte) (*Identity, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedIdentity)
	}
	return NewIdentity(fields)
}

func rawRole(fields map[string]any) string {
	if v, ok := fields[FieldRole].(string); ok && v != "" {
		return v
	}
	if v, ok := fields[fieldRoleAlt].(string); ok && v != "" {
		return v
	}
	return ""
}

func (i *Identity) Role() Role { return i.role }

// RawRole returns the role tag exactly as stored.
func (i *Identity) RawRole() string { return rawRole(i.fields) }

func (i *Identity) ID() string {
	if v := i.str(FieldID); v != "" {
		return v
	}
	return i.str(fieldIDAlt)
}

func (i *Identity) Name() string {
	if v := i.str(FieldName); v != "" {
		return v
	}
	return i.str(fieldNameAlt)
}

func (i *Identity) Email() string { return i.str(FieldEmail) }

// Field returns a raw profile field.
func (i *Identity) Field(key string) (any, bool) {
	v, ok := i.fields[key]
	return v, ok
}

// Fields returns a copy of the underlying field map.
func (i *Identity) Fields() map[string]any { return maps.Clone(i.fields) }

// Merge returns a new identity with patch shallow-merged over the current
// fields. Patch keys win. The role is re-parsed; a patch that blanks the role
// keeps the previous tag, so the merged record still decodes.
func (i *Identity) Merge(patch map[string]any) *Identity {
	merged := maps.Clone(i.fields)
	if merged == nil {
		merged = make(map[string]any, len(patch))
	}
	maps.Copy(merged, patch)

	out := &Identity{fields: merged, role: i.role}
	if raw := rawRole(merged); raw != "" {
		out.role = ParseRole(raw)
	} else if prev := rawRole(i.fields); prev != "" {
		merged[FieldRole] = prev
	}
	return out
}

// Equal reports whether both identities carry the same fields.
func (i *Identity) Equal(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}
	a, errA := json.Marshal(i.fields)
	b, errB := json.Marshal(other.fields)
	return errA == nil && errB == nil && string(a) == string(b)
}

func (i *Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.fields)
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeIdentity(data)
	if err != nil {
		return err
	}
	*i = *decoded
	return nil
}

func (i *Identity) str(key string) string {
	switch v := i.fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
