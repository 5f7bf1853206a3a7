package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/domfile"
)

// readInput reads a file for a command, reporting missing or locked files
// as command errors.
func readInput(ctx context.Context, f *OutputFormatter, path string) ([]byte, error) {
	data, err := domfile.ReadBytes(ctx, path)
	switch {
	case err == nil:
		f.VerboseLog("Read %d bytes from %s", len(data), path)
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), nil)
	default:
		return nil, f.Fail(ExitCommandError, ErrCodeReadFailed, err.Error(), nil)
	}
}

// readDom reads and decodes a document. Decoding and verification failures
// are validation failures.
func readDom(ctx context.Context, f *OutputFormatter, path string) (*dom.Dom, error) {
	data, err := readInput(ctx, f, path)
	if err != nil {
		return nil, err
	}
	d, err := dom.Decode(data)
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeInvalidDom, fmt.Sprintf("%s: %v", path, err), nil)
	}
	return d, nil
}

// readPatch reads and decodes a patch file.
func readPatch(ctx context.Context, f *OutputFormatter, path string) (dom.Patch, error) {
	data, err := readInput(ctx, f, path)
	if err != nil {
		return dom.Patch{}, err
	}
	p, err := dom.DecodePatch(data)
	if err != nil {
		return dom.Patch{}, f.Fail(ExitFailure, ErrCodeInvalidPatch, fmt.Sprintf("%s: %v", path, err), nil)
	}
	return p, nil
}

// writeOutput writes canonical JSON to path, or to the command output when
// path is empty.
func writeOutput(ctx context.Context, f *OutputFormatter, path string, data []byte) error {
	if path == "" {
		if _, err := fmt.Fprintln(f.Writer, string(data)); err != nil {
			return err
		}
		return nil
	}
	if err := domfile.WriteBytes(ctx, path, data); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}
	f.VerboseLog("Wrote %d bytes to %s", len(data), path)
	return nil
}
