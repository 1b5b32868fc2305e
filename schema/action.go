// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schema

import (
	"encoding/json"
	"fmt"
)

// Action identifies an operation an assistive technology can request on a
// node. A node advertises the actions it supports via an ActionSet; the
// core forwards requests to the provider without interpreting them.
//
// The enum is capped at 32 members so a node's supported set fits in one
// uint32 mask.
type Action uint8

const (
	// ActionClick does the equivalent of a single click or tap.
	ActionClick Action = iota
	ActionFocus
	ActionBlur
	ActionCollapse
	ActionExpand

	// ActionDecrement decrements a numeric value by one step.
	ActionDecrement
	// ActionIncrement increments a numeric value by one step.
	ActionIncrement

	ActionHideTooltip
	ActionShowTooltip

	// ActionReplaceSelectedText deletes any selected text in the control's
	// value and inserts the payload value in its place, like typing or
	// pasting. Requires ActionData.Value.
	ActionReplaceSelectedText

	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
	ActionScrollUp

	// ActionScrollIntoView scrolls any scrollable containers to make the
	// target node visible.
	ActionScrollIntoView

	// ActionScrollToPoint scrolls the target to a specific point in the
	// tree's container. Requires ActionData.ScrollToPoint.
	ActionScrollToPoint

	// ActionSetTextSelection requires ActionData.TextSelection.
	ActionSetTextSelection

	// ActionSetValue replaces the value of the control. Requires
	// ActionData.Value or ActionData.NumericValue.
	ActionSetValue

	ActionShowContextMenu

	// actionCount sentinel for validation; keep last.
	actionCount
)

var actionNames = [...]string{
	ActionClick:               "click",
	ActionFocus:               "focus",
	ActionBlur:                "blur",
	ActionCollapse:            "collapse",
	ActionExpand:              "expand",
	ActionDecrement:           "decrement",
	ActionIncrement:           "increment",
	ActionHideTooltip:         "hideTooltip",
	ActionShowTooltip:         "showTooltip",
	ActionReplaceSelectedText: "replaceSelectedText",
	ActionScrollDown:          "scrollDown",
	ActionScrollLeft:          "scrollLeft",
	ActionScrollRight:         "scrollRight",
	ActionScrollUp:            "scrollUp",
	ActionScrollIntoView:      "scrollIntoView",
	ActionScrollToPoint:       "scrollToPoint",
	ActionSetTextSelection:    "setTextSelection",
	ActionSetValue:            "setValue",
	ActionShowContextMenu:     "showContextMenu",
}

// String returns the camelCase name of the action.
func (a Action) String() string {
	if int(a) < len(actionNames) && actionNames[a] != "" {
		return actionNames[a]
	}
	return "unknown"
}

// IsValid reports whether the action is a member of the closed enumeration.
func (a Action) IsValid() bool {
	return a < actionCount
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionNames))
	for a, name := range actionNames {
		m[name] = Action(a)
	}
	return m
}()

// ParseAction maps a camelCase action name back to its Action.
func ParseAction(name string) (Action, bool) {
	a, ok := actionsByName[name]
	return a, ok
}

// MarshalText encodes the action as its name.
func (a Action) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("action %d: out of range", a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, ok := ParseAction(string(text))
	if !ok {
		return fmt.Errorf("unknown action %q", text)
	}
	*a = parsed
	return nil
}

func (a Action) mask() uint32 {
	return 1 << uint32(a)
}

// ActionSet is the set of actions a node supports, stored as a bitmask.
//
// The zero value is the empty set. ActionSet is a value type; Add and
// Remove return the modified set rather than mutating in place, which
// keeps Node records trivially shareable between snapshots.
type ActionSet uint32

// NewActionSet builds a set from the given actions.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.Add(a)
	}
	return s
}

// Add returns the set with the action included.
func (s ActionSet) Add(a Action) ActionSet {
	return s | ActionSet(a.mask())
}

// Remove returns the set with the action excluded.
func (s ActionSet) Remove(a Action) ActionSet {
	return s &^ ActionSet(a.mask())
}

// Has reports whether the action is in the set.
func (s ActionSet) Has(a Action) bool {
	return s&ActionSet(a.mask()) != 0
}

// IsEmpty reports whether no actions are in the set.
func (s ActionSet) IsEmpty() bool {
	return s == 0
}

// Slice returns the members of the set in enum order.
func (s ActionSet) Slice() []Action {
	if s == 0 {
		return nil
	}
	actions := make([]Action, 0, 4)
	for a := Action(0); a < actionCount; a++ {
		if s.Has(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// MarshalJSON encodes the set as an array of action names.
func (s ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array of action names.
func (s *ActionSet) UnmarshalJSON(data []byte) error {
	var actions []Action
	if err := json.Unmarshal(data, &actions); err != nil {
		return err
	}
	*s = NewActionSet(actions...)
	return nil
}
