package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

const defaultDescribePrompt = "Descreva este produto para um anúncio: material, cor, estilo e público provável."

var describeOutputFile string

var describeCmd = &cobra.Command{
	Use:   "describe <image> [prompt]",
	Short: "Describe a product photo",
	Long: `Send a product photo with a single prompt and print the model's description.
Without a prompt a generic product description is requested.

Examples:
  contentpilot describe bolsa.jpg
  contentpilot describe tenis.png "Liste os diferenciais visíveis"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVarP(&describeOutputFile, "output", "o", "", "write output to file")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	image, err := readImage(args[0])
	if err != nil {
		return err
	}
	prompt := defaultDescribePrompt
	if len(args) > 1 {
		prompt = strings.Join(args[1:], " ")
	}

	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	resp, err := runPending(ctx, "describe", cfg.LLMTimeout, func(runCtx context.Context) oneShot {
		r, err := a.Assistant.DescribeImage(runCtx, prompt, *image)
		return oneShot{resp: r, err: err}
	})
	if err != nil {
		return err
	}
	return writeAnswer(resp, describeOutputFile)
}
