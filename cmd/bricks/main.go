// Package main provides the Bricks ML toolkit CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/bricks-ml/bricks/internal/serialization"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Bricks ML Toolkit %s\n", version)
			return
		case "inspect":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: bricks inspect <checkpoint>")
				os.Exit(2)
			}
			if err := inspect(os.Args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "bricks: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Bricks ML Toolkit - sequence generation and beam search for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version               Show version")
	fmt.Println("  inspect <checkpoint>  List the tensors in a checkpoint file")
}

func inspect(path string) error {
	tensors, meta, err := serialization.Load(path)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := tensors[name]
		fmt.Printf("%-40s %-8s %v\n", name, t.DType(), t.Shape())
	}

	if meta != nil {
		fmt.Printf("\nepoch %d  step %d  cost %.6f", meta.Epoch, meta.Step, meta.Cost)
		if meta.RunID != "" {
			fmt.Printf("  run %s", meta.RunID)
		}
		fmt.Println()
	}
	return nil
}
