package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IvanShishkin/buildid/internal/config"
	"github.com/IvanShishkin/buildid/pkg/models"
)

// ruleWidth is the width of the separator after each detailed block
const ruleWidth = 50

// Format renders the results that carry a Build ID in the given mode.
// The output never ends with a newline.
func Format(results []*models.ExtractionResult, mode string) (string, error) {
	valid := models.FilterWithBuildID(results)

	switch mode {
	case config.FormatSimple:
		return formatSimple(valid), nil
	case config.FormatDetailed:
		return formatDetailed(valid), nil
	case config.FormatJSON:
		return formatJSON(valid)
	default:
		return "", fmt.Errorf("unknown output format: %s", mode)
	}
}

func formatSimple(results []*models.ExtractionResult) string {
	ids := make([]string, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.ID())
	}
	return strings.Join(ids, "\n")
}

func formatDetailed(results []*models.ExtractionResult) string {
	lines := make([]string, 0, len(results)*8)
	for _, res := range results {
		lines = append(lines,
			fmt.Sprintf("File: %s", res.File),
			fmt.Sprintf("BuildID: %s", res.ID()),
			fmt.Sprintf("Architecture: %s", res.Info.Architecture),
			fmt.Sprintf("Type: %s", res.Info.FileType),
			fmt.Sprintf("Size: %d bytes", res.Info.FileSize),
			fmt.Sprintf("Debug info: %s", yesNo(res.Info.HasDebugInfo)),
			fmt.Sprintf("Stripped: %s", yesNo(res.Info.IsStripped)),
			strings.Repeat("-", ruleWidth),
		)
	}
	return strings.Join(lines, "\n")
}

func formatJSON(results []*models.ExtractionResult) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(results); err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
