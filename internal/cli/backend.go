package cli

import (
	"context"
	"errors"

	"github.com/raphaelgruber/contentpilot/internal/client"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/service"
)

// turnResult is one finished turn as the terminal shows it.
type turnResult struct {
	Reply     *models.ChatMessage
	Extracted bool
	// Message is the human-readable failure, empty on success.
	Message string
	Err     error
}

// chatBackend is a conversation the REPL drives, either in-process or on a server.
type chatBackend interface {
	Submit(ctx context.Context, prompt string, image *models.Image) turnResult
	SetMode(ctx context.Context, mode models.Mode) error
	SetPlatform(ctx context.Context, platform *models.Platform) error
	Save(ctx context.Context, messageID string) (string, error)
	Selection() (models.Mode, *models.Platform)
	Close() error
}

// localBackend runs the session in this process.
type localBackend struct {
	session *service.Session
	library *service.ContentLibrary
}

func (b *localBackend) Submit(ctx context.Context, prompt string, image *models.Image) turnResult {
	out := b.session.Submit(ctx, service.Turn{Prompt: prompt, Image: image})
	if out.Err != nil {
		return turnResult{Message: service.UserMessage(out.Err), Err: out.Err}
	}
	return turnResult{Reply: out.Reply, Extracted: out.Extracted}
}

func (b *localBackend) SetMode(_ context.Context, mode models.Mode) error {
	return b.session.SetMode(mode)
}

func (b *localBackend) SetPlatform(_ context.Context, platform *models.Platform) error {
	return b.session.SetPlatform(platform)
}

func (b *localBackend) Save(ctx context.Context, messageID string) (string, error) {
	saved, err := b.library.Save(ctx, b.session.ID, messageID)
	if err != nil {
		return "", err
	}
	return saved.Key(), nil
}

func (b *localBackend) Selection() (models.Mode, *models.Platform) {
	state := b.session.Snapshot()
	return state.Mode, state.Platform
}

func (b *localBackend) Close() error { return nil }

// remoteBackend drives a server session over its websocket.
type remoteBackend struct {
	client   *client.Client
	stream   *client.TurnStream
	mode     models.Mode
	platform *models.Platform
}

func newRemoteBackend(ctx context.Context, c *client.Client, mode models.Mode, platform *models.Platform) (*remoteBackend, error) {
	session, err := c.CreateSession(ctx, mode, platform)
	if err != nil {
		return nil, err
	}
	stream, err := c.OpenSession(ctx, session.ID)
	if err != nil {
		_ = c.DeleteSession(ctx, session.ID)
		return nil, err
	}
	return &remoteBackend{client: c, stream: stream, mode: session.Mode, platform: session.Platform}, nil
}

func (b *remoteBackend) Submit(ctx context.Context, prompt string, image *models.Image) turnResult {
	result, err := b.stream.Submit(ctx, client.Turn{Prompt: prompt, Image: image})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return turnResult{Message: apiErr.Message, Err: err}
		}
		if ctx.Err() != nil {
			// cancellation closed the socket; the session itself survives
			if stream, openErr := b.client.OpenSession(context.Background(), b.stream.SessionID); openErr == nil {
				b.stream = stream
			}
			return turnResult{Message: service.UserMessage(service.ErrTurnAbandoned), Err: err}
		}
		return turnResult{Message: err.Error(), Err: err}
	}
	return turnResult{Reply: result.Reply, Extracted: result.Extracted}
}

func (b *remoteBackend) SetMode(ctx context.Context, mode models.Mode) error {
	m := string(mode)
	session, err := b.client.UpdateSession(ctx, b.stream.SessionID, client.SessionUpdate{Mode: &m})
	if err != nil {
		return err
	}
	b.mode = session.Mode
	return nil
}

func (b *remoteBackend) SetPlatform(ctx context.Context, platform *models.Platform) error {
	p := ""
	if platform != nil {
		p = string(*platform)
	}
	session, err := b.client.UpdateSession(ctx, b.stream.SessionID, client.SessionUpdate{Platform: &p})
	if err != nil {
		return err
	}
	b.platform = session.Platform
	return nil
}

func (b *remoteBackend) Save(ctx context.Context, messageID string) (string, error) {
	saved, err := b.client.SaveContent(ctx, b.stream.SessionID, messageID)
	if err != nil {
		return "", err
	}
	return saved.ID, nil
}

func (b *remoteBackend) Selection() (models.Mode, *models.Platform) {
	return b.mode, b.platform
}

// Close ends the stream and discards the server session.
func (b *remoteBackend) Close() error {
	err := b.stream.Close()
	if delErr := b.client.DeleteSession(context.Background(), b.stream.SessionID); delErr != nil {
		return errors.Join(err, delErr)
	}
	return err
}
