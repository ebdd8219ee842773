package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
)

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Landing page content",
	}

	cmd.AddCommand(newContentShowCmd())
	cmd.AddCommand(newContentUpdateCmd())

	return cmd
}

func newContentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the published content blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]json.RawMessage
			if err := client.Get(cmd.Context(), "/api/v1/content/public", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newContentUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <key> <json>",
		Short: "Replace a content block (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := json.RawMessage(args[1])
			if !json.Valid(value) {
				return fmt.Errorf("value for %s is not valid JSON", args[0])
			}

			var result response.ContentEntry
			req := request.UpdateContentRequest{Key: args[0], Value: value}
			if err := client.Post(cmd.Context(), "/api/v1/content/update", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Updated " + result.Key)
			return nil
		},
	}
}
