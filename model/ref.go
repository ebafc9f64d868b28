package model

// Ref is a small tagged union standing in for the source system's runtime
// type tests on record arguments (accepting either a bare key or a loaded
// entity instance interchangeably). Every operation that used to sniff an
// argument's type at runtime instead takes a Ref[T] and resolves it once,
// up front, via ID or Value.
//
// Grounded in the Design Notes' explicit instruction to replace reflective
// dispatch with small tagged variants at every boundary.
type Ref[T any] struct {
	id    string
	value *T
	hasID bool
}

// ByID builds a Ref that names an entity by its primary key / identifier
// string without requiring it to already be loaded.
func ByID[T any](id string) Ref[T] {
	return Ref[T]{id: id, hasID: true}
}

// ByValue builds a Ref around an already-resolved entity.
func ByValue[T any](v T) Ref[T] {
	return Ref[T]{value: &v}
}

// ID returns the identifier this ref was built from, resolving it from the
// held value via idOf when the ref was constructed with ByValue.
func (r Ref[T]) ID(idOf func(T) string) string {
	if r.hasID {
		return r.id
	}
	if r.value != nil {
		return idOf(*r.value)
	}
	return ""
}

// Value returns the already-resolved value and true, or the zero value and
// false if this ref only carries an identifier.
func (r Ref[T]) Value() (T, bool) {
	if r.value != nil {
		return *r.value, true
	}
	var zero T
	return zero, false
}
