package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [category]",
		Short: "Report a sorted piece of trash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.ScanRequest
			if len(args) == 1 {
				req.Category = args[0]
			}

			var result response.ScanResponse
			if err := client.Post(cmd.Context(), "/api/v1/garbage/scan", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Mini-game commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameScoreCmd())
	cmd.AddCommand(newGameLeaderboardCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Spend a ticket to start a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.StartGameResponse
			if err := client.Post(cmd.Context(), "/api/v1/games/start", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameScoreCmd() *cobra.Command {
	var (
		gameType string
		score    int
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Report the score of a finished game",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.ScoreRequest{Score: &score, GameType: gameType}

			var result response.ScoreResponse
			if err := client.Post(cmd.Context(), "/api/v1/games/score", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameType, "game", "", "Game variant: catcher, snake, quiz (required)")
	cmd.Flags().IntVar(&score, "score", 0, "Points scored")
	_ = cmd.MarkFlagRequired("game")

	return cmd
}

func newGameLeaderboardCmd() *cobra.Command {
	var game string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top ten students",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/games/leaderboard"
			if game != "" {
				path += "?" + url.Values{"game": {game}}.Encode()
			}

			var result []response.LeaderboardEntry
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game variant, or all for total score")

	return cmd
}
