package format

import (
	"errors"
	"fmt"
)

// Kind names a formatting the toolbar can toggle and query.
type Kind string

const (
	Bold         Kind = "bold"
	Italic       Kind = "italic"
	NumberedList Kind = "numbered-list"
	BulletList   Kind = "bullet-list"
)

// Kinds lists every Kind in toolbar order.
var Kinds = []Kind{Bold, Italic, BulletList, NumberedList}

// ErrUnknownKind is returned by ParseKind for names outside Kinds.
var ErrUnknownKind = errors.New("unknown format kind")

// ParseKind converts a wire name such as "bullet-list" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Bold, Italic, NumberedList, BulletList:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string { return string(k) }

// marker returns the inline delimiter for Bold and Italic, "" otherwise.
func (k Kind) marker() string {
	switch k {
	case Bold:
		return "**"
	case Italic:
		return "*"
	}
	return ""
}
