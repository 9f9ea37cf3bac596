package entry

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDPolicy turns a numeric input id into the string id of an entry in
// dictionary dictID.
type IDPolicy interface {
	ConceptID(dictID string, n int64) string
}

// PaddedIDs builds "<dictID>:<n>" with n zero-padded to Width digits.
type PaddedIDs struct {
	Width int
}

// DefaultIDPolicy pads numbers to four digits: dictionary "A" and 5 give "A:0005".
func DefaultIDPolicy() IDPolicy { return PaddedIDs{Width: 4} }

// ConceptID implements IDPolicy.
func (p PaddedIDs) ConceptID(dictID string, n int64) string {
	num := strconv.FormatInt(n, 10)
	if len(num) < p.Width {
		num = strings.Repeat("0", p.Width-len(num)) + num
	}
	return dictID + ":" + num
}

// UUIDIDs derives a name-based (SHA-1) UUID from "<dictID>:<n>", so the same
// number in the same dictionary always maps to the same id.
type UUIDIDs struct {
	Namespace uuid.UUID
}

// ConceptID implements IDPolicy.
func (p UUIDIDs) ConceptID(dictID string, n int64) string {
	ns := p.Namespace
	if ns == uuid.Nil {
		ns = uuid.NameSpaceOID
	}
	return uuid.NewSHA1(ns, []byte(dictID+":"+strconv.FormatInt(n, 10))).String()
}

// ResolveID returns in with a numeric id replaced by the policy's string id.
func ResolveID(in Input, p IDPolicy) Input {
	n, ok := in.ID.Number()
	if !ok || n == 0 {
		return in
	}
	if p == nil {
		p = DefaultIDPolicy()
	}
	in.ID = StringID(p.ConceptID(in.DictID, n))
	return in
}
