package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/raphaelgruber/contentpilot/internal/llm"
	"github.com/raphaelgruber/contentpilot/internal/service"
	"github.com/spf13/cobra"
)

var askOutputFile string

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send a single prompt to the model",
	Long: `Send one prompt without a conversation or system instructions and print
the model's answer.

Examples:
  contentpilot ask "Sugira 5 nomes para uma loja de bolsas artesanais"
  contentpilot ask "Quais datas comemorativas vendem mais em dezembro?" -o datas.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write output to file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	prompt := strings.Join(args, " ")

	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	resp, err := runPending(ctx, "ask", cfg.LLMTimeout, func(runCtx context.Context) oneShot {
		r, err := a.Assistant.Ask(runCtx, prompt)
		return oneShot{resp: r, err: err}
	})
	if err != nil {
		return err
	}
	return writeAnswer(resp, askOutputFile)
}

// oneShot carries a single prompt result through the progress view.
type oneShot struct {
	resp llm.Response
	err  error
}

func writeAnswer(result oneShot, path string) error {
	if result.err != nil {
		return fmt.Errorf("%s", service.UserMessage(result.err))
	}

	if path != "" {
		if err := os.WriteFile(path, []byte(result.resp.Data+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "Answer written to %s\n", path)
		return nil
	}

	fmt.Fprintln(out, result.resp.Data)
	return nil
}
