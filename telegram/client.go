// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/bvk/papertrade/ctxutil"
	"github.com/bvk/papertrade/frontend"
	"github.com/bvk/papertrade/syncmap"
	"github.com/visvasity/cli"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type CmdFunc = cli.CmdFunc

type Command struct {
	Purpose string
	Handler CmdFunc

	// Keyboard, when non-nil, returns the inline keyboard attached to the
	// command's reply.
	Keyboard func() *models.InlineKeyboardMarkup
}

type Client struct {
	cg ctxutil.CloseGroup

	mu sync.Mutex

	bot *bot.Bot

	self *models.User

	secrets *Secrets

	frontend *frontend.Frontend

	commandMap syncmap.Map[string, *Command]
}

type senderKey struct{}

func withSender(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, senderKey{}, uid)
}

// Sender returns the telegram user id of the user who sent the command being
// handled.
func Sender(ctx context.Context) int64 {
	uid, _ := ctx.Value(senderKey{}).(int64)
	return uid
}

// New connects to the Telegram bot api and starts handling updates in the
// background.
func New(ctx context.Context, secrets *Secrets, fe *frontend.Frontend) (_ *Client, status error) {
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	c := &Client{
		secrets:  secrets.Clone(),
		frontend: fe,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(c.handler),
	}
	bot, err := bot.New(secrets.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	c.bot = bot

	self, err := bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get bot information: %w", err)
	}
	c.self = self

	c.addCommands()
	if ok, err := c.bot.SetMyCommands(ctx, c.commands()); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("could not set bot commands")
	}

	c.cg.Go(func(ctx context.Context) {
		c.bot.Start(ctx)
	})
	slog.Info("telegram bot started", "username", self.Username)
	return c, nil
}

func (c *Client) Close() error {
	c.cg.Close()
	return nil
}

func (c *Client) BotUserName() string {
	return c.self.Username
}

func (c *Client) AddCommand(name string, cmd *Command) error {
	if len(name) == 0 || cmd == nil || len(cmd.Purpose) == 0 || cmd.Handler == nil {
		return os.ErrInvalid
	}
	if _, loaded := c.commandMap.LoadOrStore(name, cmd); loaded {
		return os.ErrExist
	}
	return nil
}

func (c *Client) commands() *bot.SetMyCommandsParams {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cmds []models.BotCommand
	for cmd, cdata := range c.commandMap.Range {
		cmds = append(cmds, models.BotCommand{
			Command:     cmd,
			Description: cdata.Purpose,
		})
	}
	p := &bot.SetMyCommandsParams{
		Commands: cmds,
	}
	return p
}

func (c *Client) getCommand(update *models.Update) (string, []string, *Command, error) {
	if update.Message == nil {
		return "", nil, nil, os.ErrInvalid
	}
	if len(update.Message.Entities) == 0 {
		return "", nil, nil, os.ErrInvalid
	}
	entity := update.Message.Entities[0]
	if entity.Type != models.MessageEntityTypeBotCommand {
		return "", nil, nil, os.ErrInvalid
	}
	if entity.Offset != 0 || entity.Length > len(update.Message.Text) {
		return "", nil, nil, os.ErrInvalid
	}
	if update.Message.Text[0] != '/' {
		return "", nil, nil, os.ErrInvalid
	}
	cmd := update.Message.Text[1:entity.Length]
	// Commands in groups are addressed as /cmd@botname.
	if name, _, ok := strings.Cut(cmd, "@"); ok {
		cmd = name
	}
	args := strings.Fields(strings.TrimSpace(update.Message.Text[entity.Length:]))
	cdata, ok := c.commandMap.Load(cmd)
	if !ok {
		return cmd, nil, nil, os.ErrNotExist
	}
	return cmd, args, cdata, nil
}

func (c *Client) handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if b != c.bot {
		slog.Error("handler invoked with invalid bot value", "want", c.bot, "got", b)
		return
	}

	if update.CallbackQuery != nil {
		if err := c.onSelection(ctx, update.CallbackQuery); err != nil {
			slog.Error("could not handle trade selection (ignored)", "user", update.CallbackQuery.From.ID, "err", err)
		}
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}
	sender := update.Message.From.ID

	if _, _, _, err := c.getCommand(update); err == nil || os.IsNotExist(err) {
		if err := c.respond(ctx, update); err != nil {
			slog.Error("could not respond to user command (ignored)", "user", sender, "err", err)
		}
		return
	}

	if err := c.onText(ctx, update.Message); err != nil {
		slog.Error("could not respond to user message (ignored)", "user", sender, "err", err)
	}
}

func (c *Client) sendReply(ctx context.Context, chatID int64, replyTo int, text string, markup *models.InlineKeyboardMarkup) error {
	True := true
	p := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &True,
		},
	}
	if replyTo != 0 {
		p.ReplyParameters = &models.ReplyParameters{
			MessageID: replyTo,
		}
	}
	if markup != nil {
		p.ReplyMarkup = markup
	}
	if _, err := c.bot.SendMessage(ctx, p); err != nil {
		return err
	}
	return nil
}

func (c *Client) respond(ctx context.Context, update *models.Update) (status error) {
	var reply string
	var markup *models.InlineKeyboardMarkup
	defer func() {
		if len(reply) != 0 {
			if err := c.sendReply(ctx, update.Message.Chat.ID, update.Message.ID, reply, markup); err != nil {
				status = err
			}
		}
	}()

	cmd, args, cdata, err := c.getCommand(update)
	if err != nil {
		reply = fmt.Sprintf("Unknown command /%s", cmd)
		return nil
	}

	sender := update.Message.From.ID
	var sb strings.Builder
	if err := cdata.Handler(cli.WithStdout(withSender(ctx, sender), &sb), args); err != nil {
		slog.Error("could not handle user command (ignored)", "cmd", cmd, "user", sender, "err", err)
		reply = frontend.ErrorText(err)
		return nil
	}

	reply = sb.String()
	if cdata.Keyboard != nil {
		markup = cdata.Keyboard()
	}
	return nil
}

func (c *Client) onSelection(ctx context.Context, q *models.CallbackQuery) error {
	if _, err := c.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		slog.Warn("could not answer callback query (ignored)", "user", q.From.ID, "err", err)
	}

	reply, err := c.frontend.Select(ctx, q.From.ID, q.Data)
	if err != nil {
		reply = frontend.ErrorText(err)
	}

	// Replacing the menu message also removes its keyboard, so a selection
	// cannot be clicked twice.
	if p := editParams(q, reply); p != nil {
		if _, err := c.bot.EditMessageText(ctx, p); err != nil {
			return err
		}
		return nil
	}
	return c.sendReply(ctx, q.From.ID, 0, reply, nil)
}

// editParams returns the request that replaces the callback query's message
// with text. Returns nil when the message is no longer accessible.
func editParams(q *models.CallbackQuery, text string) *bot.EditMessageTextParams {
	m := q.Message.Message
	if m == nil {
		return nil
	}
	return &bot.EditMessageTextParams{
		ChatID:    m.Chat.ID,
		MessageID: m.ID,
		Text:      text,
	}
}

func (c *Client) onText(ctx context.Context, m *models.Message) error {
	reply, ok, err := c.frontend.Amount(ctx, m.From.ID, m.Text)
	if !ok {
		return nil
	}
	if err != nil {
		reply = frontend.ErrorText(err)
	}
	return c.sendReply(ctx, m.Chat.ID, m.ID, reply, nil)
}

// CheckToken verifies the bot token with the Telegram servers and returns the
// bot's user name.
func CheckToken(ctx context.Context, secrets *Secrets) (string, error) {
	if err := secrets.Check(); err != nil {
		return "", err
	}
	b, err := bot.New(secrets.BotToken)
	if err != nil {
		return "", fmt.Errorf("could not create telegram bot: %w", err)
	}
	self, err := b.GetMe(ctx)
	if err != nil {
		return "", fmt.Errorf("could not verify bot token: %w", err)
	}
	return self.Username, nil
}
