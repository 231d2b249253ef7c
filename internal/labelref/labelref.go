// Package labelref parses symbolic label references into their file and
// label components.
//
// Two grammars are accepted. The canonical form "@FileId:LabelId" is always
// tried first. The legacy single-token form "@SYS13342" (an uppercase file
// prefix followed by digits, no colon) is accepted as a fallback; its file id
// is the leading uppercase run and its label id is the full token, since
// legacy label files key their entries by the complete token.
package labelref

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidReference is returned for any string that matches neither the
// canonical nor the legacy reference grammar.
var ErrInvalidReference = errors.New("invalid label reference")

var (
	canonicalPattern = regexp.MustCompile(`^@([A-Za-z0-9_]+):([A-Za-z0-9_]+)$`)
	legacyPattern    = regexp.MustCompile(`^@([A-Z]+)([0-9]+)$`)
)

// Reference identifies one label: the label file it lives in and its id
// within that file.
type Reference struct {
	FileID  string
	LabelID string
}

// String renders the reference in canonical form.
func (r Reference) String() string {
	return "@" + r.FileID + ":" + r.LabelID
}

// Parse validates and normalizes a reference string. It never panics; any
// shape outside the two grammars yields ErrInvalidReference.
func Parse(s string) (Reference, error) {
	if m := canonicalPattern.FindStringSubmatch(s); m != nil {
		return Reference{FileID: m[1], LabelID: m[2]}, nil
	}
	if m := legacyPattern.FindStringSubmatch(s); m != nil {
		return Reference{FileID: m[1], LabelID: m[1] + m[2]}, nil
	}
	return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
}
