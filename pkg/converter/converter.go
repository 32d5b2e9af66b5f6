package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConvertFile converts the project at inputPath, inferring the direction
// from its extension, and writes the result to outputPath. When outputPath
// is empty the result is written beside the input with the opposite
// extension. The destination appears atomically or not at all.
func ConvertFile(ctx context.Context, inputPath, outputPath string, notifier Notifier) error {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read input file %s: %w", inputPath, err)
		}
		inputFormat = DetectFormatFromContent(data)
	}

	switch inputFormat {
	case FormatReaper:
		if outputPath == "" {
			outputPath = siblingPath(inputPath, ".dawproject")
		}
		return ReaperToDawProject(ctx, inputPath, outputPath, notifier)
	case FormatDawProject:
		if outputPath == "" {
			outputPath = siblingPath(inputPath, ".rpp")
		}
		return DawProjectToReaper(ctx, inputPath, outputPath, notifier)
	default:
		return fmt.Errorf("cannot determine project format of %s", inputPath)
	}
}

// siblingPath swaps the extension of path.
func siblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// checkStage is the cooperative cancellation point between conversion
// stages.
func checkStage(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// writeFileAtomic writes data to path via a temporary sibling so a failed
// or cancelled conversion never leaves a truncated destination.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// GetSupportedConversions returns the supported conversion paths.
func GetSupportedConversions() []string {
	return []string{
		"rpp -> dawproject",
		"dawproject -> rpp",
	}
}
