package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/spf13/cobra"
)

var (
	chatMode     string
	chatPlatform string
)

const chatHelp = `Start an interactive conversation with the content assistant.

In standard mode the first message needs a product photo: attach it with
/image before sending the prompt. Replies that carry structured content
can be stored in the content library with /save.

Commands:
  /mode <standard|viral|competitor>   switch mode for the next turn
  /platform <name|none>               select or clear the target platform
  /image <path>                       attach a photo to the next turn
  /save [message-id]                  save the last structured reply
  /help                               show commands
  /quit                               leave the session

Examples:
  contentpilot chat
  contentpilot chat --mode viral
  contentpilot chat --platform linkedin --server http://localhost:8484`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive content session",
	Long:  chatHelp,
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", string(models.ModeStandard), "initial mode (standard, viral, competitor)")
	chatCmd.Flags().StringVarP(&chatPlatform, "platform", "p", "", "initial platform (defaults to CONTENTPILOT_DEFAULT_PLATFORM)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mode, err := models.ParseMode(chatMode)
	if err != nil {
		return err
	}
	platform := cfg.InitialPlatform()
	if chatPlatform != "" {
		p, err := models.ParsePlatform(chatPlatform)
		if err != nil {
			return err
		}
		platform = &p
	}

	var backend chatBackend
	local := false
	if c := remoteClient(); c != nil {
		backend, err = newRemoteBackend(ctx, c, mode, platform)
		if err != nil {
			return fmt.Errorf("open server session: %w", err)
		}
	} else {
		a, err := getApp(ctx)
		if err != nil {
			return err
		}
		session, err := a.Sessions.Create(mode, platform)
		if err != nil {
			return err
		}
		defer func() { _ = a.Sessions.Delete(session.ID) }()
		backend = &localBackend{session: session, library: a.Library}
		local = true
	}
	defer backend.Close()

	repl := newChatREPL(backend, os.Stdin, out, cfg.LLMTimeout)
	if err := repl.run(ctx); err != nil {
		return err
	}

	if local && application != nil {
		snap := application.Metrics.Snapshot()
		fmt.Fprintln(out)
		printStats(out, "Session Statistics", &snap)
	}
	return nil
}

// chatREPL reads prompts and slash commands line by line.
type chatREPL struct {
	backend chatBackend
	in      io.Reader
	out     io.Writer
	timeout time.Duration
	theme   Theme

	// image waits for the next submitted prompt
	image *models.Image
	// lastStructured is the newest reply that can be saved
	lastStructured string
}

func newChatREPL(backend chatBackend, in io.Reader, w io.Writer, timeout time.Duration) *chatREPL {
	return &chatREPL{
		backend: backend,
		in:      in,
		out:     w,
		timeout: timeout,
		theme:   defaultTheme,
	}
}

func (r *chatREPL) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	fmt.Fprintln(r.out, r.theme.hintStyle().Render("Type /help for commands, /quit to leave."))
	for {
		r.printPrompt()
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}
		r.submit(ctx, line)
	}
}

func (r *chatREPL) printPrompt() {
	mode, platform := r.backend.Selection()
	label := string(mode)
	if platform != nil {
		label += "/" + string(*platform)
	}
	if r.image != nil {
		label += " +img"
	}
	fmt.Fprint(r.out, r.theme.statusStyle().Render(label+">")+" ")
}

// command handles one slash command and reports whether the REPL should stop.
func (r *chatREPL) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Fprintln(r.out, chatHelp)

	case "/mode":
		if arg == "" {
			r.fail("usage: /mode <standard|viral|competitor>")
			return false
		}
		mode, err := models.ParseMode(arg)
		if err != nil {
			r.fail(fmt.Sprintf("unknown mode %q, use standard, viral or competitor", arg))
			return false
		}
		if err := r.backend.SetMode(ctx, mode); err != nil {
			r.fail(err.Error())
			return false
		}
		r.ok("Mode: " + string(mode))

	case "/platform":
		if arg == "" || arg == "none" {
			if err := r.backend.SetPlatform(ctx, nil); err != nil {
				r.fail(err.Error())
				return false
			}
			r.ok("Platform cleared")
			return false
		}
		platform, err := models.ParsePlatform(arg)
		if err != nil {
			r.fail(fmt.Sprintf("unknown platform %q, run 'contentpilot platforms' for valid values", arg))
			return false
		}
		if err := r.backend.SetPlatform(ctx, &platform); err != nil {
			r.fail(err.Error())
			return false
		}
		r.ok("Platform: " + platform.Label())

	case "/image":
		if arg == "" {
			r.fail("usage: /image <path>")
			return false
		}
		image, err := readImage(arg)
		if err != nil {
			r.fail(err.Error())
			return false
		}
		r.image = image
		r.ok(fmt.Sprintf("Attached %s (%s, %d bytes)", arg, image.MIMEType, len(image.Data)))

	case "/save":
		id := arg
		if id == "" {
			id = r.lastStructured
		}
		if id == "" {
			r.fail("nothing to save yet")
			return false
		}
		savedID, err := r.backend.Save(ctx, id)
		if err != nil {
			r.fail(err.Error())
			return false
		}
		r.ok("Saved as " + savedID)

	default:
		r.fail(fmt.Sprintf("unknown command %s, type /help", name))
	}
	return false
}

func (r *chatREPL) submit(ctx context.Context, prompt string) {
	mode, _ := r.backend.Selection()
	image := r.image

	result, err := runPending(ctx, string(mode), r.timeout, func(runCtx context.Context) turnResult {
		return r.backend.Submit(runCtx, prompt, image)
	})
	if err != nil {
		r.fail(err.Error())
		return
	}
	if result.Err != nil {
		r.fail(result.Message)
		return
	}

	// the image went out with a committed turn
	r.image = nil
	r.render(result)
}

func (r *chatREPL) render(result turnResult) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, result.Reply.Content)
	fmt.Fprintln(r.out)
	if result.Extracted {
		r.lastStructured = result.Reply.ID
		fmt.Fprintln(r.out, r.theme.hintStyle().Render("/save to keep this post ("+result.Reply.ID+")"))
	}
}

func (r *chatREPL) ok(msg string) {
	fmt.Fprintln(r.out, r.theme.completedStyle().Render("✓")+" "+msg)
}

func (r *chatREPL) fail(msg string) {
	fmt.Fprintln(r.out, r.theme.errorStyle().Render("✗")+" "+msg)
}

// readImage loads a photo and sniffs its type.
func readImage(path string) (*models.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image file is empty")
	}
	return &models.Image{Data: data, MIMEType: http.DetectContentType(data)}, nil
}
