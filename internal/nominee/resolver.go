// Package nominee reconciles a client-submitted nominee reference against
// the authoritative category list. Clients render a nominee list fetched
// at page-load time and submit the 1-based index they saw; admins can edit
// the list while voting is live, shifting indices out from under cached
// pages. Resolution therefore trusts the submitted name over the
// submitted id: the name survives reorders, the index does not.
package nominee

import (
	"errors"
	"strings"

	"github.com/mselim/awards-voting/internal/model"
)

// ErrInvalidNominee is returned when neither a matching name nor an
// in-range id identifies a nominee on the current list.
var ErrInvalidNominee = errors.New("invalid nominee")

// Resolve returns the nominee id (1 + index on the category's current
// list) for a client-supplied (id, name) pair. nomineeID <= 0 means no id
// was supplied; an empty name means no name was supplied.
//
// A supplied name that matches an entry (trimmed, case-insensitive) wins
// unconditionally. Otherwise the supplied id is used as-is, but only when
// it falls within [1, len(nominees)]; an out-of-range id hard-fails
// rather than being clamped to the nearest valid entry.
func Resolve(cat model.Category, nomineeID int, nomineeName string) (int, error) {
	if name := normalize(nomineeName); name != "" {
		for i, n := range cat.Nominees {
			if normalize(n) == name {
				return i + 1, nil
			}
		}
	}
	if nomineeID >= 1 && nomineeID <= len(cat.Nominees) {
		return nomineeID, nil
	}
	return 0, ErrInvalidNominee
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
