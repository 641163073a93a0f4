package fshost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.jacobcolvin.com/pathplease/host"
)

// Editor is a [host.Editor] over a file loaded by a [Host].
type Editor struct {
	*host.Buffer

	host *Host
}

// Document implements [host.Editor].
func (e *Editor) Document() host.Document {
	return e.Buffer
}

// Apply implements [host.Editor]. The edited text is written back to the
// file, keeping its permissions, or printed as a diff in dry-run mode. The
// buffer is left unchanged when writing fails.
func (e *Editor) Apply(ctx context.Context, edits ...host.Edit) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	before := e.Buffer.String()

	err = e.Buffer.Apply(edits...)
	if err != nil {
		return err
	}

	if e.host.dryRun {
		e.host.mu.Lock()
		defer e.host.mu.Unlock()

		_, err = io.WriteString(e.host.out, e.host.theme.Diff.Diff(e.Path(), before, e.Buffer.String()))
		if err != nil {
			return fmt.Errorf("write diff: %w", err)
		}

		return nil
	}

	err = writeFile(e.Path(), e.Buffer.Bytes())
	if err != nil {
		e.Buffer = host.NewBuffer(e.Path(), e.LanguageID(), []byte(before))

		return err
	}

	e.host.log.Debug("document written", slog.String("path", e.Path()))

	return nil
}

func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}

	err = os.WriteFile(path, data, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}

	return nil
}
