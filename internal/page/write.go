package page

import (
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
)

// Write stores doc as outputDir/index.html, creating outputDir when missing,
// and returns the path written. The file is replaced atomically so a server
// reading the directory never sees a partial document.
func Write(outputDir string, doc []byte) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	target := filepath.Join(outputDir, FileName)

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fsError(err, "create output directory", outputDir)
	}

	tmp, err := os.CreateTemp(outputDir, ".index-*.html")
	if err != nil {
		return "", fsError(err, "create temporary file", outputDir)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fsError(err, "write page", target)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fsError(err, "close page", target)
	}
	// #nosec G302 -- the page is public web content
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fsError(err, "chmod page", target)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return "", fsError(err, "replace page", target)
	}
	return target, nil
}

func fsError(err error, msg, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).
		Fatal().
		WithContext("path", path).
		Build()
}
