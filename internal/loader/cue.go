package loader

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// cueToJSON evaluates a CUE document and exports it as JSON. The value must
// be concrete; definitions and hidden fields are not exported, so a document
// may declare #Column style helpers next to its statements.
func cueToJSON(path string, data []byte) ([]byte, error) {
	// A context is not safe for concurrent use; documents load in parallel.
	ctx := cuecontext.New()

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(path, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(path, err)
	}

	out, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(path, err)
	}
	return out, nil
}

// formatCUEError keeps the first error and its source position.
func formatCUEError(path string, err error) error {
	le := &LoadError{Code: ErrCodeBuildFailed, Path: path, Message: err.Error(), Err: err}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	first := errs[0]
	le.Message = first.Error()
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
