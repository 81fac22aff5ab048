package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chesswatch/chesswatch/internal/api"
	"github.com/chesswatch/chesswatch/internal/app"
	"github.com/chesswatch/chesswatch/internal/baseline"
	"github.com/chesswatch/chesswatch/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "chesswatch",
	Short: "chesswatch - cheating-risk scoring for chess games",
	Long:  `chesswatch assigns a calibrated, explainable cheating-risk score to submitted chess games for arbiter triage.`,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(thresholdsCmd)
	rootCmd.AddCommand(completionCmd)

	assessCmd.Flags().Bool("no-save", false, "print the assessment without persisting it")
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish|powershell]",
	Short:                 "Generate the autocompletion script for the specified shell",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.ExactValidArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			err = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			err = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating completion script: %v\n", err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("chesswatch v0.1.0")
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assessment API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp()
		if err != nil {
			return err
		}
		defer a.Close()

		server := api.NewServer(a.Engine, a.Decoder, a.Store, a.Core.Logger, a.Core.Config.ListenAddr)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			a.Core.Logger.Error("server failed", zap.Error(err))
			return err
		case sig := <-sigCh:
			a.Core.Logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

var assessCmd = &cobra.Command{
	Use:   "assess <submission.json>",
	Short: "Assess a preprocessed game submission and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewQuietApp()
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open submission: %w", err)
		}
		defer f.Close()

		game, err := a.Decoder.Decode(f)
		if err != nil {
			return err
		}

		assessment, explanation := a.Engine.Assess(game)

		noSave, _ := cmd.Flags().GetBool("no-save")
		if !noSave {
			rec := &storage.StoredAssessment{
				GameID:      game.GameID,
				Player:      game.Player,
				Title:       game.Title,
				TimeControl: game.TimeControl,
				Assessment:  assessment,
				Explanation: explanation,
			}
			if _, err := a.Store.Save(rec); err != nil {
				a.Core.Logger.Error("failed to persist assessment", zap.Error(err))
			}
		}

		out := api.AssessResponse{
			GameID:      game.GameID,
			Assessment:  assessment,
			Explanation: explanation,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds <title> <time-control>",
	Short: "Print the baseline profile for a title and time control",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewQuietApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profile := a.Thresholds.Lookup(args[0], args[1])
		out := map[string]any{
			"title":        baseline.NormalizeTitle(args[0]),
			"time_control": baseline.NormalizeTimeControl(args[1]),
			"profile":      profile,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
