package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/modelgarden/nodeup/internal/models"
)

// Column layout: name, source_url, subfolder, requirements_file. The last
// two columns are optional. The first row is a header and is ignored.

// Load reads the manifest and returns descriptors in file order. A missing
// or unreadable manifest is the one run-fatal condition; malformed rows are
// returned as invalid descriptors so the orchestrator can record them as
// failed without attempting any network action.
func Load(path string) ([]models.NodeDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrFatalConfig,
			fmt.Sprintf("opening manifest %s: %v", path, err))
	}
	defer f.Close()

	descriptors, err := parse(f)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrFatalConfig,
			fmt.Sprintf("reading manifest %s: %v", path, err))
	}

	slog.Debug("manifest loaded", "path", path, "nodes", len(descriptors))
	return descriptors, nil
}

func parse(r io.Reader) ([]models.NodeDescriptor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var descriptors []models.NodeDescriptor
	seen := make(map[string]bool)

	for i, record := range records {
		if i == 0 {
			// header row
			continue
		}
		if blankRow(record) {
			continue
		}

		d := models.NodeDescriptor{}
		if len(record) > 0 {
			d.Name = strings.TrimSpace(record[0])
		}
		if len(record) > 1 {
			d.SourceURL = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			d.Subfolder = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			d.RequirementsFile = strings.TrimSpace(record[3])
		}

		switch {
		case d.Name == "":
			d.Invalid = true
			d.InvalidReason = fmt.Sprintf("row %d: missing name", i+1)
			d.Name = fmt.Sprintf("row-%d", i+1)
		case d.SourceURL == "":
			d.Invalid = true
			d.InvalidReason = fmt.Sprintf("row %d: missing source url", i+1)
		case seen[d.Name]:
			d.Invalid = true
			d.InvalidReason = fmt.Sprintf("row %d: duplicate of earlier row", i+1)
		}

		if !d.Invalid {
			seen[d.Name] = true
		} else {
			slog.Warn("invalid manifest row", "row", i+1, "reason", d.InvalidReason)
		}

		descriptors = append(descriptors, d)
	}

	return descriptors, nil
}

func blankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
