// Package optional provides an explicit present/absent wrapper for criteria fields.
package optional

// Value holds a T that may be absent. The zero value is absent.
type Value[T any] struct {
	v  T
	ok bool
}

// Some returns a present value.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromPtr converts a nil-able pointer into a Value.
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return Value[T]{}
	}
	return Some(*p)
}

// IsSet reports whether the value is present.
func (o Value[T]) IsSet() bool { return o.ok }

// Get returns the value and whether it is present.
func (o Value[T]) Get() (T, bool) { return o.v, o.ok }

// OrElse returns the value when present, def otherwise.
func (o Value[T]) OrElse(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (o Value[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.v
	return &v
}
