package shared

import (
	"os"

	"revenue_dash/internal/app"
)

// LoadFallback reads the degraded-mode revenue table from path, or returns
// the built-in table when path is empty.
func LoadFallback(path string) (app.FallbackTable, error) {
	if path == "" {
		return app.DefaultFallbackTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return app.FallbackTable{}, err
	}
	defer f.Close()
	return app.LoadFallbackTable(f)
}
