package constraint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tabspec/internal/diagnostic"
)

// AbsoluteFilePath validates that v is an absolute path string. When mustExist
// is set the path must also exist at the time of the call.
func AbsoluteFilePath(v any, mustExist bool) (string, error) {
	p, ok := v.(string)
	if !ok || p == "" {
		return "", diagnostic.NewValidationError("bad_path",
			fmt.Sprintf("expected a file path string, got %T %v", v, v), "", "")
	}

	if !filepath.IsAbs(p) {
		return "", diagnostic.NewValidationError("relative_path",
			fmt.Sprintf("path %q is not absolute", p), "", "")
	}

	if mustExist {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", diagnostic.NewValidationError("missing_file",
					fmt.Sprintf("path %q does not exist", p), "", "")
			}

			return "", diagnostic.NewValidationError("unreadable_path",
				fmt.Sprintf("path %q cannot be accessed: %v", p, err), "", "")
		}
	}

	return filepath.Clean(p), nil
}
