package model

import (
	"fmt"
	"strings"
)

// Context is the GTD situation in which a next action can be done.
type Context string

const (
	AtComputer    Context = "@computer"
	AtOffice      Context = "@office"
	PhoneCalls    Context = "@phone"
	Board         Context = "@board"
	AwaitingReply Context = "awaiting-reply"
	SomedayMaybe  Context = "someday-maybe"
	Reference     Context = "reference"
)

// Contexts lists every known context in display order.
var Contexts = []Context{
	AtComputer,
	AtOffice,
	PhoneCalls,
	Board,
	AwaitingReply,
	SomedayMaybe,
	Reference,
}

// IsValid checks if the context is one of the known contexts
func (c Context) IsValid() bool {
	switch c {
	case AtComputer, AtOffice, PhoneCalls, Board, AwaitingReply, SomedayMaybe, Reference:
		return true
	}
	return false
}

// ParseContext accepts a context with or without its leading "@".
func ParseContext(s string) (Context, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Contexts {
		if s == string(c) || "@"+s == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown context %q", s)
}
