package point

import "strings"

// MirrorPrefix marks the name of a mirrored counterpart.
const MirrorPrefix = "mirror_"

// ID names a point together with its mirror side. The mirrored counterpart
// of "thumb" is "mirror_thumb".
type ID struct {
	Base     string
	Mirrored bool
}

// ParseID splits a point name into its base and mirror side.
func ParseID(name string) ID {
	if base, ok := strings.CutPrefix(name, MirrorPrefix); ok {
		return ID{Base: base, Mirrored: true}
	}
	return ID{Base: name}
}

// String returns the point name.
func (id ID) String() string {
	if id.Mirrored {
		return MirrorPrefix + id.Base
	}
	return id.Base
}

// Toggle returns the ID of the counterpart on the other side.
func (id ID) Toggle() ID {
	return ID{Base: id.Base, Mirrored: !id.Mirrored}
}

// MirrorName toggles the mirror side of name when mirror is set.
func MirrorName(name string, mirror bool) string {
	if !mirror {
		return name
	}
	return ParseID(name).Toggle().String()
}
