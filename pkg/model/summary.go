package model

import (
	"fmt"
	"io"
)

// PrintSummary writes a human-readable listing of models.
func PrintSummary(w io.Writer, models []Model) error {
	if _, err := fmt.Fprintf(w, "Found %d model(s).\n", len(models)); err != nil {
		return err
	}

	for _, m := range models {
		if m.Parent != "" {
			fmt.Fprintf(w, "Model: %s (parent %s)\n", m.Name, m.Parent)
		} else {
			fmt.Fprintf(w, "Model: %s\n", m.Name)
		}
		for _, a := range m.Attributes {
			fmt.Fprintf(w, "  Attribute:\n    Name: %s\n    Description: %s\n    Type: %s\n\n",
				a.Name, a.Description, a.Type)
		}
	}
	return nil
}
