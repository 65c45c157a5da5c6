// Command checkmodel verifies offline that a feature schema lines up with a
// model artifact, column for column. It exits 1 on any mismatch.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"aqiserve/ml"
	"aqiserve/schema"
)

func main() {
	schemaRef := flag.String("schema", "sensors-5", "schema preset name or YAML file")
	modelPath := flag.String("model", "best_aqi_model.json", "model artifact path")
	flag.Parse()

	if err := check(os.Stdout, *schemaRef, *modelPath); err != nil {
		log.Fatalf("checkmodel: %v", err)
	}
}

func check(out io.Writer, schemaRef, modelPath string) error {
	s, err := schema.Resolve(schemaRef)
	if err != nil {
		return err
	}
	m, err := ml.LoadModel(modelPath)
	if err != nil {
		return err
	}
	if err := ml.CheckColumns(m, s.Columns()); err != nil {
		return fmt.Errorf("schema %s vs %s: %w", s, modelPath, err)
	}

	fmt.Fprintf(out, "schema %s matches %s\n", s, modelPath)
	for i, f := range s.Fields {
		fmt.Fprintf(out, "  %2d  %-14s -> %s\n", i, f.Name, f.Column)
	}
	return nil
}
