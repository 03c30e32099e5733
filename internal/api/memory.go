package api

import (
	"unicode/utf8"
	"unsafe"

	"github.com/initia-labs/movevm/types"
)

// ByteSliceView is a non-owning view into memory held by the caller. It has
// the same layout as the view handed across the foreign boundary, which is why
// it carries a raw pointer instead of a slice.
//
// A nil view and a zero length view both mean "absent".
type ByteSliceView struct {
	isNil bool
	ptr   *byte
	len   uintptr
}

// MakeView creates a view into the given byte slice. The byte slice is managed
// by Go and will be garbage collected. Use runtime.KeepAlive to ensure the byte
// slice lives long enough.
func MakeView(s []byte) ByteSliceView {
	if s == nil {
		return ByteSliceView{isNil: true, ptr: nil, len: 0}
	}

	// In Go, accessing the 0-th element of an empty array triggers a panic. That is why in the case
	// of an empty `[]byte` we can't get the internal heap pointer to the underlying array as we do
	// below with `&data[0]`. https://play.golang.org/p/xvDY3g9OqUk
	if len(s) == 0 {
		return ByteSliceView{isNil: false, ptr: nil, len: 0}
	}

	return ByteSliceView{
		isNil: false,
		ptr:   &s[0],
		len:   uintptr(len(s)),
	}
}

// IsNil reports whether the view was made from a nil slice.
func (v ByteSliceView) IsNil() bool {
	return v.isNil
}

// Len returns the number of bytes the view covers.
func (v ByteSliceView) Len() int {
	return int(v.len)
}

// Read borrows the bytes behind the view. It returns nil for absent views.
// The result aliases caller memory and must not outlive the call.
func (v ByteSliceView) Read() []byte {
	if v.isNil || v.len == 0 || v.ptr == nil {
		return nil
	}
	return unsafe.Slice(v.ptr, v.len)
}

// ToOwned copies the bytes behind the view. It returns nil for absent views.
func (v ByteSliceView) ToOwned() []byte {
	data := v.Read()
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// ToString decodes the view as UTF-8 text. Absent views return nil.
func (v ByteSliceView) ToString() (*string, error) {
	data := v.Read()
	if data == nil {
		return nil, nil
	}
	if !utf8.Valid(data) {
		return nil, types.ErrMarshalling.Wrap("invalid utf-8")
	}
	s := string(data)
	return &s, nil
}

// ToPath decodes the view as a filesystem path. The text is taken verbatim,
// no cleaning or resolution happens here.
func (v ByteSliceView) ToPath() (*string, error) {
	return v.ToString()
}

// readStringField is ToString with the field name in the error message.
func readStringField(name string, v ByteSliceView) (*string, error) {
	s, err := v.ToString()
	if err != nil {
		return nil, types.NewMarshallingError(name, err)
	}
	return s, nil
}

func readPathField(name string, v ByteSliceView) (*string, error) {
	s, err := v.ToPath()
	if err != nil {
		return nil, types.NewMarshallingError(name, err)
	}
	return s, nil
}
