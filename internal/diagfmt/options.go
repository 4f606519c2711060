package diagfmt

import "deprecheck/internal/source"

// PathMode selects how file paths appear in rendered output.
type PathMode uint8

const (
	// PathModeAuto shortens long absolute paths to the file name.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

var pathModeNames = [...]string{
	PathModeAuto:     "auto",
	PathModeAbsolute: "absolute",
	PathModeRelative: "relative",
	PathModeBasename: "basename",
}

// ParsePathMode accepts auto (or empty), absolute, relative and basename.
func ParsePathMode(s string) (PathMode, bool) {
	if s == "" {
		return PathModeAuto, true
	}
	for m, name := range pathModeNames {
		if name == s {
			return PathMode(m), true
		}
	}
	return PathModeAuto, false
}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return pathModeNames[PathModeAuto]
}

// formatPath: базовый каталог нужен только относительному режиму.
func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	var base string
	if mode == PathModeRelative {
		base = fs.BaseDir()
	}
	return f.FormatPath(mode.String(), base)
}

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	Color       bool
	PathMode    PathMode
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool // строки до/после для каждой правки
}

// JSONOpts configures the JSON renderer. Max trims the rendered list only;
// the trimmed count is added to Dropped.
type JSONOpts struct {
	PathMode         PathMode
	Max              int
	IncludePositions bool
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}
