package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dealSeed  int64
	dealDraw  int
	dealMode  string
	hintLimit int

	rootCmd = &cobra.Command{
		Use:           "klondike",
		Short:         "Klondike solitaire engine and game service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game service",
		Long: `Runs the game service. Settings come from the environment and an
optional .env file: KLONDIKE_ADDR, KLONDIKE_DATA_DIR, DATABASE_URL, REDIS_URL,
SESSION_SECRET, SESSION_TTL, KLONDIKE_SCORING_FILE, LOG_LEVEL and LOG_FORMAT.`,
		Args: cobra.NoArgs,
		RunE: runServe, // cmd_serve.go
	}

	dealCmd = &cobra.Command{
		Use:   "deal",
		Short: "Deal a game and print its snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE:  runDeal, // cmd_tools.go
	}

	hintCmd = &cobra.Command{
		Use:   "hint [snapshot.json|-]",
		Short: "Print hints for a snapshot read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHint, // cmd_tools.go
	}
)

func init() {
	dealCmd.Flags().Int64Var(&dealSeed, "seed", 0, "shuffle seed (0 picks one)")
	dealCmd.Flags().IntVar(&dealDraw, "draw", 1, "cards per draw, 1 or 3")
	dealCmd.Flags().StringVar(&dealMode, "mode", "standard", "scoring mode, standard or vegas")
	hintCmd.Flags().IntVar(&hintLimit, "limit", 5, "maximum number of hints (0 for all)")

	rootCmd.AddCommand(serveCmd, dealCmd, hintCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
