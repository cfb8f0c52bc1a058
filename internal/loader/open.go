package loader

import (
	"fmt"
	"os"

	"github.com/kk-code-lab/vgrid/internal/sheet"
)

// Open picks a sheet type for path by extension. The sheet is returned
// unloaded; start it with sheet.StartReload.
func Open(env *sheet.Env, path string) (sheet.Sheet, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	switch ext := baseExt(path); ext {
	case ".xlsx", ".xlsm":
		if compression(path) != "" {
			return nil, fmt.Errorf("%s: compressed workbooks are not supported", path)
		}
		return NewWorkbookSheet(env, path), nil
	case ".tsv", ".tab":
		return NewCSVSheet(env, path, '\t'), nil
	default:
		return NewCSVSheet(env, path, 0), nil
	}
}
