package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/Schmarni-Dev/project-trc/internal/game"
	"github.com/Schmarni-Dev/project-trc/internal/proto"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	for name, schema := range buildSchemas() {
		path := filepath.Join(outDir, name+".schema.json")
		if err := writeSchema(path, schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	schemas := map[string]*jsonschema.Schema{}
	add := func(name, title, description string, v any) {
		schema := reflector.Reflect(v)
		schema.Title = title
		schema.Description = description
		schemas[name] = schema
	}

	add("setup_info", "Turtle Setup Info",
		"Payload a turtle sends in response to GetSetupInfo to identify itself.",
		new(proto.SetupInfo))
	add("turtle", "Turtle Snapshot",
		"Roster entry describing a turtle's pose, inventory and fuel state.",
		new(game.Turtle))
	add("world", "World Snapshot",
		"Chunked block data for a named world as sent to clients.",
		new(game.World))
	add("block", "Block",
		"A single scanned block keyed by world position.",
		new(game.Block))
	add("inventory", "Turtle Inventory",
		"Sixteen item slots plus the currently selected slot.",
		new(game.Inventory))

	return schemas
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
