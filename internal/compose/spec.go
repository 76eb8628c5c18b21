// Package compose runs the declared set of content API fetches behind one page.
//
// A page is a list of FetchSpecs, one per named slot. Slots without a
// dependency run concurrently. A slot with DependsOn waits for that slot and
// may take query parameters from its resolved document. A REQUIRED slot that
// comes back empty or fails aborts the page; an OPTIONAL one falls back to its
// default.
package compose

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"

	"github.com/gutp/discux/internal/adapters/contentapi"
)

// Criticality classifies a slot within a composition.
type Criticality int

const (
	// Required slots must resolve to a non-empty result.
	Required Criticality = iota + 1
	// Optional slots fall back to their default on any failure.
	Optional
)

func (c Criticality) String() string {
	switch c {
	case Required:
		return "required"
	case Optional:
		return "optional"
	default:
		return fmt.Sprintf("criticality(%d)", int(c))
	}
}

// decoded is what a slot resolves to: the typed value handed to the page and
// the generic JSON document dependents evaluate ParamsFrom against.
type decoded struct {
	value any
	doc   any
	empty bool
}

type decodeFunc func(path string, raw []json.RawMessage) (decoded, error)

// FetchSpec declares one outbound call and how its result fills a slot.
// Build specs with One or Many and refine them with the chaining helpers.
type FetchSpec struct {
	Slot        string
	Path        string
	Params      url.Values
	Criticality Criticality
	Default     any
	DependsOn   string

	// ParamsFrom maps query parameter names to JMESPath expressions evaluated
	// against the DependsOn slot's JSON document, e.g. {"post_id": "id"}.
	ParamsFrom map[string]string

	// Action and Reason describe a failed REQUIRED slot to the user.
	Action string
	Reason string

	zero   any
	decode decodeFunc
}

// One declares a slot holding the first entity of the answer. Its default is the zero T.
func One[T any](slot, path string, params url.Values) FetchSpec {
	var zero T
	return FetchSpec{
		Slot:        slot,
		Path:        path,
		Params:      params,
		Criticality: Optional,
		Default:     zero,
		zero:        zero,
		decode: func(path string, raw []json.RawMessage) (decoded, error) {
			v, found, err := contentapi.DecodeFirst[T](path, raw)
			if err != nil || !found {
				return decoded{empty: true}, err
			}
			var doc any
			if err := json.Unmarshal(raw[0], &doc); err != nil {
				return decoded{}, &contentapi.DecodeError{Path: path, Err: err}
			}
			return decoded{value: v, doc: doc}, nil
		},
	}
}

// Many declares a slot holding the whole list. Its default is an empty []T.
func Many[T any](slot, path string, params url.Values) FetchSpec {
	empty := []T{}
	return FetchSpec{
		Slot:        slot,
		Path:        path,
		Params:      params,
		Criticality: Optional,
		Default:     empty,
		zero:        empty,
		decode: func(path string, raw []json.RawMessage) (decoded, error) {
			list, err := contentapi.DecodeList[T](path, raw)
			if err != nil {
				return decoded{}, err
			}
			if len(list) == 0 {
				return decoded{value: list, empty: true}, nil
			}
			docs := make([]any, 0, len(raw))
			for _, item := range raw {
				var doc any
				if err := json.Unmarshal(item, &doc); err != nil {
					return decoded{}, &contentapi.DecodeError{Path: path, Err: err}
				}
				docs = append(docs, doc)
			}
			return decoded{value: list, doc: docs}, nil
		},
	}
}

// Require marks the slot REQUIRED; action and reason become the user-facing
// error when it resolves empty.
func (s FetchSpec) Require(action, reason string) FetchSpec {
	s.Criticality = Required
	s.Action = action
	s.Reason = reason
	return s
}

// After makes the slot depend on another one. from maps query parameter names
// to JMESPath expressions over the dependency's document.
func (s FetchSpec) After(slot string, from map[string]string) FetchSpec {
	s.DependsOn = slot
	s.ParamsFrom = from
	return s
}

func (s FetchSpec) validate() error {
	if s.Slot == "" {
		return fmt.Errorf("fetch spec for %q has no slot name", s.Path)
	}
	if s.Path == "" {
		return fmt.Errorf("slot %q has no path", s.Slot)
	}
	if s.decode == nil {
		return fmt.Errorf("slot %q was not built with One or Many", s.Slot)
	}
	if s.Criticality != Required && s.Criticality != Optional {
		return fmt.Errorf("slot %q has invalid %s", s.Slot, s.Criticality)
	}
	if s.Default != nil && reflect.TypeOf(s.Default) != reflect.TypeOf(s.zero) {
		return fmt.Errorf("slot %q default is %T, want %T", s.Slot, s.Default, s.zero)
	}
	if len(s.ParamsFrom) > 0 && s.DependsOn == "" {
		return fmt.Errorf("slot %q derives params without a dependency", s.Slot)
	}
	return nil
}

// Page is the declared set of fetches for one logical page.
type Page struct {
	Name  string
	Specs []FetchSpec
}

func (p Page) validate() error {
	bySlot := make(map[string]FetchSpec, len(p.Specs))
	for _, s := range p.Specs {
		if err := s.validate(); err != nil {
			return err
		}
		if _, dup := bySlot[s.Slot]; dup {
			return fmt.Errorf("duplicate slot %q", s.Slot)
		}
		bySlot[s.Slot] = s
	}
	for _, s := range p.Specs {
		if s.DependsOn == "" {
			continue
		}
		if _, ok := bySlot[s.DependsOn]; !ok {
			return fmt.Errorf("slot %q depends on unknown slot %q", s.Slot, s.DependsOn)
		}
		// Walk the chain; a chain longer than the number of slots is a cycle.
		cur, steps := s, 0
		for cur.DependsOn != "" {
			if steps++; steps > len(p.Specs) {
				return fmt.Errorf("dependency cycle through slot %q", s.Slot)
			}
			cur = bySlot[cur.DependsOn]
		}
	}
	return nil
}
