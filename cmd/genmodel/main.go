// Command genmodel writes the baseline classifier artifact.
//
// Usage:
//
//	go run ./cmd/genmodel -out models/rockfall_model.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/rockfall-risk-service/internal/model"
)

func main() {
	out := flag.String("out", "models/rockfall_model.json", "output path for the model artifact")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintf(os.Stderr, "genmodel: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

func run(path string) error {
	a := model.DefaultArtifact()

	// Validate before writing.
	if _, err := model.New(a); err != nil {
		return fmt.Errorf("validate artifact: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
