package cir

import "encoding/json"

// JSON serialization support for CIR types.
// Types and declarations include a "kind" field for discrimination.

// MarshalText implements encoding.TextMarshaler for Visibility.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// MarshalText implements encoding.TextMarshaler for Variance.
func (v Variance) MarshalText() ([]byte, error) {
	if v == Invariant {
		return []byte("invariant"), nil
	}
	return []byte(v.String()), nil
}

// MarshalText implements encoding.TextMarshaler for Modality.
func (m Modality) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// MarshalText implements encoding.TextMarshaler for ClassKind.
func (k ClassKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MarshalText implements encoding.TextMarshaler for ClassifierID.
func (id ClassifierID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// MarshalJSON implements json.Marshaler for TypeProjection.
func (p TypeProjection) MarshalJSON() ([]byte, error) {
	if p.Star {
		return json.Marshal(&struct {
			Star bool `json:"star"`
		}{Star: true})
	}
	return json.Marshal(&struct {
		Variance Variance `json:"variance"`
		Type     Type     `json:"type"`
	}{
		Variance: p.Variance,
		Type:     p.Type,
	})
}

// MarshalJSON implements json.Marshaler for ClassType.
func (t *ClassType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind       string           `json:"kind"`
		ID         ClassifierID     `json:"id"`
		Module     string           `json:"module,omitempty"`
		Visibility Visibility       `json:"visibility"`
		Outer      *ClassType       `json:"outer,omitempty"`
		Arguments  []TypeProjection `json:"arguments,omitempty"`
		Nullable   bool             `json:"nullable,omitempty"`
	}{
		Kind:       "class",
		ID:         t.ID,
		Module:     t.Module,
		Visibility: t.Visibility,
		Outer:      t.Outer,
		Arguments:  t.Arguments,
		Nullable:   t.Nullable,
	})
}

// MarshalJSON implements json.Marshaler for TypeAliasType.
func (t *TypeAliasType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind       string               `json:"kind"`
		ID         ClassifierID         `json:"id"`
		Module     string               `json:"module,omitempty"`
		Underlying ClassOrTypeAliasType `json:"underlying"`
		Arguments  []TypeProjection     `json:"arguments,omitempty"`
		Nullable   bool                 `json:"nullable,omitempty"`
	}{
		Kind:       "typealias",
		ID:         t.ID,
		Module:     t.Module,
		Underlying: t.Underlying,
		Arguments:  t.Arguments,
		Nullable:   t.Nullable,
	})
}

// MarshalJSON implements json.Marshaler for TypeParameterType.
func (t *TypeParameterType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Index    int    `json:"index"`
		Name     string `json:"name,omitempty"`
		Nullable bool   `json:"nullable,omitempty"`
	}{
		Kind:     "typeParameter",
		Index:    t.Index,
		Name:     t.Name,
		Nullable: t.Nullable,
	})
}

// MarshalJSON implements json.Marshaler for TypeParameter.
func (p TypeParameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name        string   `json:"name"`
		Variance    Variance `json:"variance"`
		Reified     bool     `json:"reified,omitempty"`
		UpperBounds []Type   `json:"upperBounds,omitempty"`
	}{
		Name:        p.Name,
		Variance:    p.Variance,
		Reified:     p.Reified,
		UpperBounds: p.UpperBounds,
	})
}

// MarshalJSON implements json.Marshaler for TypeAlias.
func (d *TypeAlias) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind           string               `json:"kind"`
		Name           string               `json:"name"`
		TypeParameters []TypeParameter      `json:"typeParameters,omitempty"`
		Visibility     Visibility           `json:"visibility"`
		Underlying     ClassOrTypeAliasType `json:"underlying"`
		Expanded       *ClassType           `json:"expanded,omitempty"`
	}{
		Kind:           "typealias",
		Name:           d.Name,
		TypeParameters: d.TypeParameters,
		Visibility:     d.Visibility,
		Underlying:     d.Underlying,
		Expanded:       d.Expanded,
	})
}

// MarshalJSON implements json.Marshaler for Class.
func (d *Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind           string          `json:"kind"`
		Name           string          `json:"name"`
		TypeParameters []TypeParameter `json:"typeParameters,omitempty"`
		Visibility     Visibility      `json:"visibility"`
		Modality       Modality        `json:"modality"`
		ClassKind      ClassKind       `json:"classKind"`
	}{
		Kind:           "class",
		Name:           d.Name,
		TypeParameters: d.TypeParameters,
		Visibility:     d.Visibility,
		Modality:       d.Modality,
		ClassKind:      d.ClassKind,
	})
}
