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

import "fmt"

// Role describes what kind of UI element a node represents.
//
// The set is closed: platform translators switch exhaustively over it when
// mapping nodes onto native accessibility roles, so new roles are added
// here rather than invented by providers.
type Role uint8

const (
	// RoleUnknown is the default for elements with no better classification.
	RoleUnknown Role = iota

	// RoleGenericContainer is a container with no semantics of its own,
	// filtered out of assistive-technology views while its children are
	// kept. Equivalent to an HTML div with no ARIA role.
	RoleGenericContainer

	RoleWindow
	RolePane
	RoleDialog
	RoleAlertDialog
	RoleAlert
	RoleApplication
	RoleDocument

	RoleButton
	RoleDefaultButton
	RoleCheckBox
	RoleRadioButton
	RoleRadioGroup
	RoleSwitch
	RoleSlider
	RoleSpinButton
	RoleProgressIndicator

	RoleLabel
	RoleParagraph
	RoleHeading
	RoleImage
	RoleLink
	RoleTooltip
	RoleCanvas

	RoleTextInput
	RoleMultilineTextInput
	RoleSearchInput
	RolePasswordInput
	RoleNumberInput
	RoleDateInput
	RoleTimeInput
	RoleEmailInput
	RoleUrlInput
	RolePhoneNumberInput

	RoleList
	RoleListItem
	RoleListMarker
	RoleListBox
	RoleListBoxOption
	RoleComboBox

	RoleMenu
	RoleMenuBar
	RoleMenuItem
	RoleMenuListOption

	RoleTab
	RoleTabList
	RoleTabPanel
	RoleToolbar
	RoleStatusBar
	RoleScrollBar
	RoleSplitter

	RoleTable
	RoleRow
	RoleRowGroup
	RoleRowHeader
	RoleColumnHeader
	RoleCell

	RoleTree
	RoleTreeItem
	RoleTreeGrid

	RoleGroup
	RoleBanner
	RoleArticle
	RoleWebView

	// roleCount sentinel for validation; keep last.
	roleCount
)

var roleNames = [...]string{
	RoleUnknown:            "unknown",
	RoleGenericContainer:   "genericContainer",
	RoleWindow:             "window",
	RolePane:               "pane",
	RoleDialog:             "dialog",
	RoleAlertDialog:        "alertDialog",
	RoleAlert:              "alert",
	RoleApplication:        "application",
	RoleDocument:           "document",
	RoleButton:             "button",
	RoleDefaultButton:      "defaultButton",
	RoleCheckBox:           "checkBox",
	RoleRadioButton:        "radioButton",
	RoleRadioGroup:         "radioGroup",
	RoleSwitch:             "switch",
	RoleSlider:             "slider",
	RoleSpinButton:         "spinButton",
	RoleProgressIndicator:  "progressIndicator",
	RoleLabel:              "label",
	RoleParagraph:          "paragraph",
	RoleHeading:            "heading",
	RoleImage:              "image",
	RoleLink:               "link",
	RoleTooltip:            "tooltip",
	RoleCanvas:             "canvas",
	RoleTextInput:          "textInput",
	RoleMultilineTextInput: "multilineTextInput",
	RoleSearchInput:        "searchInput",
	RolePasswordInput:      "passwordInput",
	RoleNumberInput:        "numberInput",
	RoleDateInput:          "dateInput",
	RoleTimeInput:          "timeInput",
	RoleEmailInput:         "emailInput",
	RoleUrlInput:           "urlInput",
	RolePhoneNumberInput:   "phoneNumberInput",
	RoleList:               "list",
	RoleListItem:           "listItem",
	RoleListMarker:         "listMarker",
	RoleListBox:            "listBox",
	RoleListBoxOption:      "listBoxOption",
	RoleComboBox:           "comboBox",
	RoleMenu:               "menu",
	RoleMenuBar:            "menuBar",
	RoleMenuItem:           "menuItem",
	RoleMenuListOption:     "menuListOption",
	RoleTab:                "tab",
	RoleTabList:            "tabList",
	RoleTabPanel:           "tabPanel",
	RoleToolbar:            "toolbar",
	RoleStatusBar:          "statusBar",
	RoleScrollBar:          "scrollBar",
	RoleSplitter:           "splitter",
	RoleTable:              "table",
	RoleRow:                "row",
	RoleRowGroup:           "rowGroup",
	RoleRowHeader:          "rowHeader",
	RoleColumnHeader:       "columnHeader",
	RoleCell:               "cell",
	RoleTree:               "tree",
	RoleTreeItem:           "treeItem",
	RoleTreeGrid:           "treeGrid",
	RoleGroup:              "group",
	RoleBanner:             "banner",
	RoleArticle:            "article",
	RoleWebView:            "webView",
}

// String returns the camelCase name of the role, matching the JSON form.
func (r Role) String() string {
	if int(r) < len(roleNames) && roleNames[r] != "" {
		return roleNames[r]
	}
	return "unknown"
}

// IsValid reports whether the role is a member of the closed enumeration.
func (r Role) IsValid() bool {
	return r < roleCount
}

var rolesByName = func() map[string]Role {
	m := make(map[string]Role, len(roleNames))
	for r, name := range roleNames {
		m[name] = Role(r)
	}
	return m
}()

// ParseRole maps a camelCase role name back to its Role.
func ParseRole(name string) (Role, bool) {
	r, ok := rolesByName[name]
	return r, ok
}

// MarshalText encodes the role as its name, so JSON carries "button"
// rather than a bare enum ordinal.
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("role %d: out of range", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, ok := ParseRole(string(text))
	if !ok {
		return fmt.Errorf("unknown role %q", text)
	}
	*r = parsed
	return nil
}
