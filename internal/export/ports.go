// Package export writes scraped port details to flat files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"shipscan/internal/models"
)

// PortsHeader is the header row of the ports file.
var PortsHeader = []string{"iso", "seaport", "lines", "import_restrictions", "export_restrictions", "website"}

// WritePorts writes ports as comma-separated records with a header row.
func WritePorts(w io.Writer, ports []models.PortInfo) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(PortsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range ports {
		record := []string{p.ISO, p.Seaport, p.Lines, p.ImportRestrictions, p.ExportRestrictions, p.Website}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write port %s/%s: %w", p.ISO, p.Seaport, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WritePortsCSV creates or truncates path and writes ports into it.
func WritePortsCSV(path string, ports []models.PortInfo) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return WritePorts(f, ports)
}
