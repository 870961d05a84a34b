// Package compiler compiles CUE induction profiles into ir.Profile values.
//
// A profile file declares one or more named profiles:
//
//	profile: actions: {
//		k:              2
//		end_of_episode: "/"
//		alphabet: ["left", "right", "jump"]
//	}
//
// Every profile is unified with an embedded schema before its fields are
// read, so defaults (k: 2, end_of_episode: "/") and constraints (k >= 1) are
// enforced by CUE itself.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/kseq/internal/ir"
)

// SchemaCUE is the schema every profile is unified with.
const SchemaCUE = `
#Profile: {
	k:              *2 | int & >=1
	end_of_episode: *"/" | string
	alphabet?: [...string]
}
`

// CompileProfile parses a CUE value into a Profile.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The CUE value should be the profile struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`profile: actions: { k: 3 }`)
//	p, err := CompileProfile(v.LookupPath(cue.ParsePath("profile.actions")))
func CompileProfile(v cue.Value) (*ir.Profile, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(SchemaCUE)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Profile")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	p := &ir.Profile{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		p.Name = labels[len(labels)-1].String()
	}

	k, err := unified.LookupPath(cue.ParsePath("k")).Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	p.K = int(k)

	eoe, err := unified.LookupPath(cue.ParsePath("end_of_episode")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	p.EndOfEpisode = eoe

	alphabetVal := unified.LookupPath(cue.ParsePath("alphabet"))
	if alphabetVal.Exists() {
		iter, err := alphabetVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		seen := make(map[string]bool)
		for iter.Next() {
			tok, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if tok == "" || tok == p.EndOfEpisode || seen[tok] {
				return nil, &CompileError{
					Field:   "alphabet",
					Message: fmt.Sprintf("token %q must be non-empty, unique and differ from end_of_episode", tok),
					Pos:     iter.Value().Pos(),
				}
			}
			seen[tok] = true
			p.Alphabet = append(p.Alphabet, tok)
		}
	}

	return p, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
