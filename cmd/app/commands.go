package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/notation"
)

type parseOutput struct {
	Blocks   []document.Block   `json:"blocks"`
	Warnings []document.Warning `json:"warnings"`
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func parseCmd(_ context.Context, cmd *cli.Command) error {
	data, err := readInput(cmd.Args().First())
	if err != nil {
		return err
	}
	out := parseNotation(string(data))
	if err := writeJSON(os.Stdout, out); err != nil {
		return err
	}
	if cmd.Bool("strict") && len(out.Warnings) > 0 {
		return fmt.Errorf("%d warnings", len(out.Warnings))
	}
	return nil
}

func formatCmd(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	data, err := readInput(name)
	if err != nil {
		return err
	}
	formatted, kept := formatNotation(string(data))
	for _, b := range kept {
		fmt.Fprintf(os.Stderr, "block %d: left unformatted, annotation section has unreadable lines\n", b)
	}

	if cmd.Bool("write") {
		if name == "" || name == "-" {
			return fmt.Errorf("--write needs a file argument")
		}
		info, err := os.Stat(name)
		if err != nil {
			return err
		}
		return os.WriteFile(name, []byte(formatted), info.Mode().Perm())
	}
	_, err = io.WriteString(os.Stdout, formatted)
	return err
}

func parseNotation(text string) parseOutput {
	blocks, warnings := document.Parse(text)
	if blocks == nil {
		blocks = []document.Block{}
	}
	if warnings == nil {
		warnings = []document.Warning{}
	}
	return parseOutput{Blocks: blocks, Warnings: warnings}
}

// formatNotation re-serializes every stanza of annotated text and keeps the
// text between stanzas as written. Text without any stanza markers is
// segmented at blank lines first. Stanzas that could not be read in full
// are left as they are and returned.
func formatNotation(text string) (string, []int) {
	if len(notation.FindBlocks(text)) == 0 {
		return document.Serialize(document.Segment(text)), nil
	}
	blocks, _ := document.Parse(text)
	return document.Rewrite(text, blocks, true)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
