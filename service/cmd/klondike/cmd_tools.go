package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jason-s-yu/klondike/engine"
	"github.com/spf13/cobra"
)

func runDeal(cmd *cobra.Command, _ []string) error {
	mode := engine.Mode(dealMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", dealMode)
	}
	g, err := engine.New(engine.Config{Mode: mode, DrawCount: dealDraw, Seed: dealSeed})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "seed %d\n", g.Seed())
	return printJSON(cmd.OutOrStdout(), g.Snapshot())
}

func runHint(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	s, err := engine.UnmarshalSnapshot(b)
	if err != nil {
		return err
	}
	hints := engine.Hints(s, hintLimit)
	if hints == nil {
		hints = []engine.Hint{}
	}
	return printJSON(cmd.OutOrStdout(), hints)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
