// Package credstore persists the client's named credential slots. The
// whole credential surface is four slots; whatever backs them must be
// able to clear them all in one atomic step.
package credstore

import "errors"

// ErrSlotNotFound is returned when a slot has no stored value.
var ErrSlotNotFound = errors.New("credential slot not found")
