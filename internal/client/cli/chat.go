package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/iudanet/campkeeper/internal/models"
)

func (c *Cli) runChat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: campkeeper chat <new|say|log>")
	}

	switch args[0] {
	case "new":
		return c.chatNew(ctx, args[1:])
	case "say":
		return c.chatSay(ctx, args[1:])
	case "log":
		return c.chatLog(ctx, args[1:])
	default:
		return fmt.Errorf("unknown chat subcommand: %s", args[0])
	}
}

func (c *Cli) chatNew(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat new", flag.ContinueOnError)
	title := fs.String("title", "", "Chat session title (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	chat := &models.ChatSession{
		Title:      *title,
		CampaignID: c.campaign,
	}
	if err := c.dataService.CreateChat(ctx, c.campaign, chat); err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	fmt.Printf("Created chat %s\n", chat.ID)
	return nil
}

func (c *Cli) chatSay(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: campkeeper chat say CHAT_ID MESSAGE")
	}

	msg := &models.ChatMessage{
		ChatID:     args[0],
		CampaignID: c.campaign,
		Role:       "user",
		Content:    strings.Join(args[1:], " "),
	}
	if err := c.dataService.AppendChatMessage(ctx, c.campaign, msg); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	fmt.Printf("Appended message %s\n", msg.ID)
	return nil
}

func (c *Cli) chatLog(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing chat id. Usage: campkeeper chat log CHAT_ID")
	}

	msgs, err := c.dataService.ListChatMessages(ctx, c.campaign, args[0])
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if len(msgs) == 0 {
		fmt.Println("No messages yet.")
		return nil
	}

	for _, msg := range msgs {
		fmt.Printf("[%v] %v\n", msg["role"], msg["content"])
	}
	return nil
}
