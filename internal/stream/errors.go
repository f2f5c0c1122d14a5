package stream

import (
	"errors"
	"go/token"
	"reflect"
)

var (
	// ErrNilSource is returned by Stream.Next when there is nothing to pull from.
	ErrNilSource = errors.New("stream: nil source")
	// ErrNilOpener is yielded by AsyncStream.Chunks when there is nothing to open.
	ErrNilOpener = errors.New("stream: nil opener")
)

// Categorizer lets an error name its own category for span descriptions.
type Categorizer interface {
	Category() string
}

// Category names the kind of err. The wrap chain is searched for a
// Categorizer first, then for the first error whose type is exported, so
// fmt.Errorf wrappers do not hide the cause. When nothing in the chain
// qualifies the outermost type name is used.
func Category(err error) string {
	var c Categorizer
	if errors.As(err, &c) {
		return c.Category()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if name := typeName(e); token.IsExported(name) {
			return name
		}
	}
	return typeName(err)
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

// Describe formats err as "<Category>: <message>".
func Describe(err error) string {
	return Category(err) + ": " + err.Error()
}
