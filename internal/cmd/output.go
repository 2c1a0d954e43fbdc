package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// report is implemented by the command results: a text rendering for humans
// and a payload for structured formats.
type report interface {
	// Text writes the human-readable rendering.
	Text(w io.Writer)
	// Payload returns the value marshaled for json/yaml output.
	Payload() interface{}
}

// emit renders r in the requested format, to stdout or to outputFile.
func emit(r report, format, outputFile string) error {
	var buf bytes.Buffer

	switch format {
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r.Payload()); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		if err := enc.Encode(r.Payload()); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		r.Text(&buf)
	}

	if outputFile == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", outputFile, err)
	}
	fmt.Fprintf(os.Stderr, "Results written to %s\n", outputFile)
	return nil
}
