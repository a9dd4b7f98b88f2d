package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/contentpilot/internal/client"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/parser"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var savedPlatform string

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage the content library",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved content, newest first",
	Long: `List posts saved from chat sessions, newest first.

Examples:
  contentpilot saved list
  contentpilot saved list --platform instagram`,
	Args: cobra.NoArgs,
	RunE: runSavedList,
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved post",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedDelete,
}

func init() {
	savedListCmd.Flags().StringVarP(&savedPlatform, "platform", "p", "", "only show content for this platform")

	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedDeleteCmd)
}

func runSavedList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var platform *models.Platform
	if savedPlatform != "" {
		p, err := models.ParsePlatform(savedPlatform)
		if err != nil {
			return err
		}
		platform = &p
	}

	items, err := listSaved(ctx, platform)
	if err != nil {
		return fmt.Errorf("list saved content: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No saved content.")
		return nil
	}

	for i, item := range items {
		if i > 0 {
			fmt.Fprintln(out)
		}
		header := fmt.Sprintf("%s  %s", item.ID, item.CreatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintln(out, defaultTheme.accentStyle().Render(header))
		fmt.Fprintln(out, parser.FormatDisplay(item.Structured()))
	}
	return nil
}

// listSaved reads the library from the server or the local store.
func listSaved(ctx context.Context, platform *models.Platform) ([]client.SavedContent, error) {
	if c := remoteClient(); c != nil {
		return c.ListContent(ctx, platform)
	}

	a, err := getApp(ctx)
	if err != nil {
		return nil, err
	}
	items, err := a.Library.List(ctx, platform)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(s models.SavedContent, _ int) client.SavedContent {
		return client.SavedContent{
			ID:          s.Key(),
			Headline:    s.Headline,
			Description: s.Description,
			CTA:         s.CTA,
			Hashtags:    s.Hashtags,
			Platform:    s.Platform,
			SessionID:   s.SessionID,
			MessageID:   s.MessageID,
			CreatedAt:   s.CreatedAt,
		}
	}), nil
}

func runSavedDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]

	if c := remoteClient(); c != nil {
		if err := c.DeleteContent(ctx, id); err != nil {
			return fmt.Errorf("delete saved content: %w", err)
		}
	} else {
		a, err := getApp(ctx)
		if err != nil {
			return err
		}
		if err := a.Library.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete saved content: %w", err)
		}
	}

	fmt.Fprintf(out, "Deleted %s\n", id)
	return nil
}
