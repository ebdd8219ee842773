package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ijo-project/ijo-backend/internal/api/request"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/model"
)

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Companion commands",
	}

	cmd.AddCommand(newItemChooseCmd())
	cmd.AddCommand(newItemShowCmd())
	cmd.AddCommand(newItemCheckInCmd())

	return cmd
}

func newItemChooseCmd() *cobra.Command {
	var req request.ChooseItemRequest

	cmd := &cobra.Command{
		Use:   "choose",
		Short: "Adopt a companion",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Item
			if err := client.Post(cmd.Context(), "/api/v1/items/choose", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Type, "type", "", fmt.Sprintf("One of: %s (required)", itemTypeList()))
	cmd.Flags().StringVar(&req.Name, "name", "", "Companion name (required)")
	cmd.Flags().StringVar(&req.Personality, "personality", "", "Companion personality (required)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("personality")

	return cmd
}

func newItemShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your companion",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Item
			if err := client.Get(cmd.Context(), "/api/v1/items/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newItemCheckInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin",
		Short: "Daily check-in for XP",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.CheckInResponse
			if err := client.Post(cmd.Context(), "/api/v1/items/checkin", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func itemTypeList() string {
	names := make([]string, len(model.ItemTypes))
	for i, t := range model.ItemTypes {
		names[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(names, ", ")
}
