// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/accesstree/schema"
)

// Scenario is a YAML capture of a tree's life: an ordered sequence of
// updates that the replay and inspect commands feed to the reconciler.
//
// Example:
//
//	name: login dialog
//	steps:
//	  - label: initial
//	    tree:
//	      root: 1
//	      appName: Demo
//	    nodes:
//	      - id: 1
//	        role: window
//	        children: [2]
//	      - id: 2
//	        role: button
//	        name: Sign in
//	        actions: [click, focus]
//	  - label: focus the button
//	    focus: 2
type Scenario struct {
	Name  string         `yaml:"name" validate:"required"`
	Steps []ScenarioStep `yaml:"steps" validate:"required,min=1,dive"`
}

// ScenarioStep is one TreeUpdate in scenario form.
type ScenarioStep struct {
	// Label names the step in replay output.
	Label string `yaml:"label"`

	Tree  *ScenarioTree  `yaml:"tree"`
	Focus *uint64        `yaml:"focus" validate:"omitempty,gt=0"`
	Nodes []ScenarioNode `yaml:"nodes" validate:"dive"`
}

// ScenarioTree is tree-level data in scenario form.
type ScenarioTree struct {
	Root           uint64 `yaml:"root" validate:"required,gt=0"`
	AppName        string `yaml:"appName"`
	ToolkitName    string `yaml:"toolkitName"`
	ToolkitVersion string `yaml:"toolkitVersion"`
}

// ScenarioNode is one node record in scenario form. Roles, actions, and
// live levels are spelled by name and resolved during conversion.
type ScenarioNode struct {
	ID       uint64   `yaml:"id" validate:"required,gt=0"`
	Role     string   `yaml:"role" validate:"required"`
	Children []uint64 `yaml:"children" validate:"dive,gt=0"`
	Actions  []string `yaml:"actions"`

	Name    *string  `yaml:"name"`
	Value   *string  `yaml:"value"`
	Ignored bool     `yaml:"ignored"`
	Live    string   `yaml:"live" validate:"omitempty,oneof=off polite assertive"`
	Numeric *float64 `yaml:"numericValue"`
	Min     *float64 `yaml:"minNumericValue"`
	Max     *float64 `yaml:"maxNumericValue"`
	Step    *float64 `yaml:"numericValueStep"`

	Bounds *ScenarioRect `yaml:"bounds"`
}

// ScenarioRect is a bounding rectangle in scenario form.
type ScenarioRect struct {
	X0 float64 `yaml:"x0"`
	Y0 float64 `yaml:"y0"`
	X1 float64 `yaml:"x1" validate:"gtefield=X0"`
	Y1 float64 `yaml:"y1" validate:"gtefield=Y0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadScenario reads, parses, and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := validate.Struct(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// TreeUpdate converts the step into the update the reconciler consumes,
// resolving role, action, and live names.
func (s *ScenarioStep) TreeUpdate() (schema.TreeUpdate, error) {
	var update schema.TreeUpdate

	if s.Tree != nil {
		tree := schema.NewTree(schema.NodeID(s.Tree.Root))
		tree.AppName = s.Tree.AppName
		tree.ToolkitName = s.Tree.ToolkitName
		tree.ToolkitVersion = s.Tree.ToolkitVersion
		update.Tree = tree
	}
	if s.Focus != nil {
		update.Focus = schema.Ptr(schema.NodeID(*s.Focus))
	}

	for _, sn := range s.Nodes {
		node, err := sn.node()
		if err != nil {
			return schema.TreeUpdate{}, err
		}
		update.Nodes = append(update.Nodes, schema.NodeEntry{
			ID:   schema.NodeID(sn.ID),
			Node: node,
		})
	}
	return update, nil
}

func (sn *ScenarioNode) node() (*schema.Node, error) {
	role, ok := schema.ParseRole(sn.Role)
	if !ok {
		return nil, fmt.Errorf("node %d: unknown role %q", sn.ID, sn.Role)
	}

	node := &schema.Node{
		Role:             role,
		Name:             sn.Name,
		Value:            sn.Value,
		Ignored:          sn.Ignored,
		NumericValue:     sn.Numeric,
		MinNumericValue:  sn.Min,
		MaxNumericValue:  sn.Max,
		NumericValueStep: sn.Step,
	}

	for _, child := range sn.Children {
		node.Children = append(node.Children, schema.NodeID(child))
	}
	for _, name := range sn.Actions {
		action, ok := schema.ParseAction(name)
		if !ok {
			return nil, fmt.Errorf("node %d: unknown action %q", sn.ID, name)
		}
		node.Actions = node.Actions.Add(action)
	}

	switch sn.Live {
	case "", "off":
	case "polite":
		node.Live = schema.LivePolite
	case "assertive":
		node.Live = schema.LiveAssertive
	}

	if sn.Bounds != nil {
		node.Bounds = &schema.Rect{
			X0: sn.Bounds.X0, Y0: sn.Bounds.Y0,
			X1: sn.Bounds.X1, Y1: sn.Bounds.Y1,
		}
	}
	return node, nil
}
