package walk

import (
	"errors"

	"github.com/zostay/emledit/message"
)

// ErrSkip may be returned by a Transformer callback to signal that the part
// should be left out of the transformed message.
var ErrSkip = errors.New("skip part")

// Transformer is a callback that can be passed to the AndTransform() function
// to transform a message and its sub-parts into a new message.
//
// The Transformer is given the part to transform and the ancestry of the part.
// If len(parents) is zero, then this is the top-level part. The parents are the
// original parents of the given part, not the transformed parents.
//
// The Transformer returns the part to use in place of the given one. Returning
// the given part unchanged keeps it, and for a branch, goes on to transform its
// sub-parts. Returning ErrSkip drops the part. Any other error ends the
// transformation.
type Transformer func(part message.Part, parents []message.Part) (message.Part, error)

// AndTransform performs a transformation on the given message, parents before
// children. Parts are never modified in place. A branch whose sub-parts were
// changed is copied with message.Multipart.WithParts, so the original message
// is left as it was and unchanged parts are shared between the two.
//
// A nested branch left with no sub-parts after skipping is dropped. The
// top-level part is never dropped for that reason, but the Transformer may
// still skip it, in which case AndTransform returns nil and ErrSkip.
func AndTransform(
	transformer Transformer,
	msg message.Part,
) (message.Part, error) {
	parents := make([]message.Part, 0, 10)
	return andTransform(transformer, msg, parents)
}

func andTransform(
	transformer Transformer,
	part message.Part,
	parents []message.Part,
) (message.Part, error) {
	tpart, err := transformer(part, parents)
	if err != nil {
		return nil, err
	}

	if tpart != part || !part.IsMultipart() {
		return tpart, nil
	}

	mm, isMultipart := part.(*message.Multipart)
	if !isMultipart {
		return part, nil
	}

	parents = append(parents, part)
	changed := false
	subParts := make([]message.Part, 0, len(mm.GetParts()))
	for _, subPart := range mm.GetParts() {
		tsubPart, err := andTransform(transformer, subPart, parents)
		switch {
		case errors.Is(err, ErrSkip):
			changed = true
			continue
		case err != nil:
			return nil, err
		}

		if tsubPart != subPart {
			changed = true
		}
		subParts = append(subParts, tsubPart)
	}

	if changed && len(subParts) == 0 && len(parents) > 1 {
		return nil, ErrSkip
	}

	if !changed {
		return part, nil
	}

	return mm.WithParts(subParts...), nil
}
