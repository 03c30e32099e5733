package natives

import (
	"reflect"

	"github.com/initia-labs/movevm/types"
)

// NativeContextExtensions holds the capability contexts of one VM invocation,
// at most one per concrete type. Natives look their context up lazily, so a
// set is never checked for completeness when it is built.
type NativeContextExtensions struct {
	exts map[reflect.Type]any
}

// NewNativeContextExtensions returns an empty extension set.
func NewNativeContextExtensions() *NativeContextExtensions {
	return &NativeContextExtensions{exts: make(map[reflect.Type]any)}
}

// Add attaches ext, replacing any context of the same type.
func (e *NativeContextExtensions) Add(ext any) {
	e.exts[reflect.TypeOf(ext)] = ext
}

// Len returns the number of attached contexts.
func (e *NativeContextExtensions) Len() int {
	return len(e.exts)
}

// Has reports whether a context of type T is attached.
func Has[T any](e *NativeContextExtensions) bool {
	_, ok := e.exts[reflect.TypeOf((*T)(nil)).Elem()]
	return ok
}

// GetExtension returns the context of type T, or an error wrapping
// types.ErrMissingExtension when none is attached.
func GetExtension[T any](e *NativeContextExtensions) (T, error) {
	var zero T
	key := reflect.TypeOf((*T)(nil)).Elem()
	if e == nil {
		return zero, types.ErrMissingExtension.Wrapf("%s", key)
	}
	ext, ok := e.exts[key]
	if !ok {
		return zero, types.ErrMissingExtension.Wrapf("%s", key)
	}
	return ext.(T), nil
}
