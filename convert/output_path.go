package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"stylevars/config"
	"stylevars/state"
)

// buildOutputPath returns constructed output file path/name based on various
// input parameters. It uses either default naming scheme (source name) or
// user-defined template and takes into account whether to preserve source
// directory structure on the output. It cleans up path and if requested
// transliterates it. Source extension is always kept.
func buildOutputPath(src, dst string, variables int, env *state.LocalEnv) string {
	outDir := determineOutputDir(src, dst, env)
	ext := filepath.Ext(src)
	defaultFile := cleanPathSegment(strings.TrimSuffix(filepath.Base(src), ext), env) + ext

	if env.Cfg.Converter.OutputNameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	expandedName := expandOutputNameTemplate(src, variables, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFile)
	}
	return assemblePathWithSubdirs(outDir, expandedName, ext, env)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func expandOutputNameTemplate(src string, variables int, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Converter.OutputNameTemplate, src, variables)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(strings.TrimSpace(expandedName))
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName, ext string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}
	dirParts = append(dirParts, cleanPathSegment(pathSegments[len(pathSegments)-1], env)+ext)
	return filepath.Join(dirParts...)
}

// splitAndCleanPath drops empty, "." and ".." segments so template cannot
// escape output directory.
func splitAndCleanPath(path string) []string {
	segments := make([]string, 0, 8)
	for segment := range strings.SplitSeq(path, string(os.PathSeparator)) {
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		segments = append(segments, segment)
	}
	return slices.Clip(segments)
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Converter.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
