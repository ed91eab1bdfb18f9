// Package schema validates ingestion payloads against a CUE schema.
// Validation is optional: ingest paths only consult a Schema when the
// caller supplied one, and a rejected payload is never appended.
package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/clognichain/clogni/internal/payload"
)

// Schema is a compiled CUE constraint. Compile once, validate many.
type Schema struct {
	ctx *cue.Context
	val cue.Value
}

// Compile parses CUE source into a Schema.
func Compile(src string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{ctx: ctx, val: v}, nil
}

// CompileFile reads and compiles a CUE schema file.
func CompileFile(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Compile(string(src))
}

// Validate checks a payload against the schema. The payload is taken
// through its canonical JSON form (JSON is valid CUE), unified with the
// schema, and required to be fully concrete.
func (s *Schema) Validate(p payload.Value) error {
	data, err := payload.MarshalCanonical(p)
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}

	dv := s.ctx.CompileBytes(data)
	if err := dv.Err(); err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}

	unified := s.val.Unify(dv)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("payload does not satisfy schema: %w", err)
	}
	return nil
}
