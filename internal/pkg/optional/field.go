// Package optional отличает "поле не передано" от "поле передано как null"
// при частичных обновлениях (PATCH/PUT с неполным телом).
package optional

import (
	"bytes"
	"encoding/json"
)

// Field хранит значение с явным признаком присутствия.
//
//	{}              -> Present() == false
//	{"f": null}     -> Present() == true, IsNull() == true
//	{"f": "value"}  -> Present() == true, Value() == "value"
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

// Of создает заполненное поле.
func Of[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

// Null создает поле, переданное явно как null.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// Present сообщает, было ли поле передано вообще (в том числе как null).
func (f Field[T]) Present() bool { return f.set }

// IsNull сообщает, что поле передано явно как null.
func (f Field[T]) IsNull() bool { return f.set && f.null }

// Value возвращает значение и признак наличия не-null значения.
func (f Field[T]) Value() (T, bool) {
	if !f.set || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Ptr возвращает nil для null, иначе указатель на копию значения.
// Для отсутствующего поля тоже nil, поэтому вызывать только после Present().
func (f Field[T]) Ptr() *T {
	if !f.set || f.null {
		return nil
	}
	v := f.value
	return &v
}

// UnmarshalJSON вызывается encoding/json только если ключ есть в объекте,
// поэтому сам факт вызова означает "поле передано".
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

// MarshalJSON сериализует отсутствующее и null поле как null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
