package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/page"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Path string `arg:"" optional:"" help:"Generated page or its directory (default: output.directory)"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	path := v.Path
	if path == "" {
		cfg, err := loadConfig(g, root)
		if err != nil {
			return err
		}
		path = ResolveOutputDir("", cfg)
	}
	_, err := RunVerify(path, os.Stdout)
	return err
}

// RunVerify inspects the page at path, prints its outline to out and fails
// when the document is structurally incomplete.
func RunVerify(path string, out io.Writer) (*page.Outline, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, page.FileName)
	}

	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.NotFoundError("generated page not found").
			WithContext("path", path).
			Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "open generated page").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	outline, err := page.Inspect(f)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "inspect generated page").
			WithContext("path", path).
			Build()
	}

	_, _ = fmt.Fprintf(out, "Page: %s\n", path)
	_, _ = fmt.Fprintf(out, "Title: %s\n", outline.Title)
	for _, s := range outline.Sections {
		state := "visible"
		if s.Hidden {
			state = "hidden"
		}
		_, _ = fmt.Fprintf(out, "  section %-10s %s\n", s.ID, state)
	}
	_, _ = fmt.Fprintf(out, "Heroes: %d\n", len(outline.HeroKeys))
	for _, msg := range outline.LoadErrors {
		_, _ = fmt.Fprintf(out, "Placeholder: %s\n", msg)
	}

	if problems := outline.Problems(); len(problems) > 0 {
		return outline, ferrors.ValidationError("generated page is incomplete").
			WithContext("path", path).
			WithContext("problems", strings.Join(problems, "; ")).
			Build()
	}
	_, _ = fmt.Fprintln(out, "OK")
	return outline, nil
}
