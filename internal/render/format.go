package render

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format describes how gmt begin should write an output extension.
type Format struct {
	GMT    string
	Raster bool
}

var formats = map[string]Format{
	".png":  {GMT: "png", Raster: true},
	".jpg":  {GMT: "jpg", Raster: true},
	".jpeg": {GMT: "jpg", Raster: true},
	".tif":  {GMT: "tif", Raster: true},
	".tiff": {GMT: "tif", Raster: true},
	".bmp":  {GMT: "bmp", Raster: true},
	".pdf":  {GMT: "pdf"},
	".eps":  {GMT: "eps"},
	".ps":   {GMT: "ps"},
}

// FormatFromPath infers the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return Format{}, fmt.Errorf("unsupported output format %q for %s", ext, path)
	}
	return f, nil
}

// psconvertOptions are the gmt begin options: always crop, and for raster
// output set resolution and anti-aliasing.
func (f Format) psconvertOptions(dpi int) []string {
	if !f.Raster {
		return []string{"A"}
	}
	return []string{"A", fmt.Sprintf("E%d", dpi), "Qg4", "Qt4"}
}
