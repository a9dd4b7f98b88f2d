package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/contentpilot/internal/client"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms",
	Args:  cobra.NoArgs,
	RunE:  runPlatforms,
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	platforms := lo.Map(models.Platforms(), func(p models.Platform, _ int) client.Platform {
		return client.Platform{ID: p, Label: p.Label()}
	})

	if c := remoteClient(); c != nil {
		var err error
		platforms, err = c.ListPlatforms(context.Background())
		if err != nil {
			return fmt.Errorf("list platforms: %w", err)
		}
	}

	for _, p := range platforms {
		fmt.Fprintf(out, "%-12s %s\n", p.ID, p.Label)
	}
	return nil
}
