// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package classdef provides the class record model shared by the
// config parsers, the class database and the validator.
package classdef

import (
	"fmt"
	"strconv"
)

// Kind is a kind of class record.
type Kind int

const (
	// Declaration is a `class X {...}` declaration.
	Declaration Kind = iota
	// Reference is a mention of a class inside an equipment array
	// or script, denoting usage.
	Reference
	// Serialized is a declaration read from an INIDBI2 export.
	Serialized
)

func (k Kind) String() string {
	switch k {
	case Declaration:
		return "declaration"
	case Reference:
		return "reference"
	case Serialized:
		return "serialized"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ListCountKey is the property key of the multiplicity of a LIST_N reference.
const ListCountKey = "list_count"

// Meta is extended metadata carried by serialized records.
type Meta struct {
	Category       string `json:"category,omitempty"`
	InheritsFrom   string `json:"inherits_from,omitempty"`
	IsSimpleObject bool   `json:"is_simple_object,omitempty"`
	NumProperties  int    `json:"num_properties,omitempty"`
	Scope          int    `json:"scope,omitempty"`
	ModelPath      string `json:"model_path,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
}

// Record is one class declaration or one class reference.
type Record struct {
	// Name is the class name. Nested classes use `Outer.Inner`.
	Name string `json:"name"`
	// Parent is the direct superclass name, or empty.
	Parent string `json:"parent,omitempty"`
	// Source is the provenance tag (mod or file identifier).
	Source string `json:"source"`
	// Line is the 1-based line of the declaration, if known.
	Line int `json:"line,omitempty"`

	// Properties holds raw property text, including quotes.
	Properties map[string]string `json:"properties,omitempty"`

	// Nested are classes declared in this class's body.
	Nested []*Record `json:"nested,omitempty"`

	Kind         Kind  `json:"kind"`
	MissionLocal bool  `json:"mission_local,omitempty"`
	Meta         *Meta `json:"meta,omitempty"`
}

// Key identifies a declaration.
type Key struct {
	Name   string
	Source string
}

// Key returns the identity of the record.
func (r *Record) Key() Key {
	return Key{Name: r.Name, Source: r.Source}
}

// IsReference reports whether r is a reference rather than a declaration.
func (r *Record) IsReference() bool {
	return r.Kind == Reference
}

// ListCount returns the LIST_N multiplicity of a reference.
func (r *Record) ListCount() (int, bool) {
	v, ok := r.Properties[ListCountKey]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NewReference creates a reference record to name found in source.
func NewReference(name, source string) *Record {
	return &Record{
		Name:   name,
		Source: source,
		Kind:   Reference,
	}
}

// Walk calls fn for r and every nested record, depth first.
func (r *Record) Walk(fn func(*Record)) {
	stack := []*Record{r}
	for len(stack) > 0 {
		rec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(rec)
		for i := len(rec.Nested) - 1; i >= 0; i-- {
			stack = append(stack, rec.Nested[i])
		}
	}
}

// Warning is a non-fatal diagnostic about input data.
type Warning struct {
	Source  string `json:"source,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	switch {
	case w.Source == "":
		return w.Message
	case w.Line == 0:
		return fmt.Sprintf("%s: %s", w.Source, w.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", w.Source, w.Line, w.Column, w.Message)
}
