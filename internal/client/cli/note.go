package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/campkeeper/internal/models"
)

func (c *Cli) runNote(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: campkeeper note <add|update|delete|list|get>")
	}

	switch args[0] {
	case "add":
		return c.noteAdd(ctx, args[1:])
	case "update":
		return c.noteUpdate(ctx, args[1:])
	case "delete":
		return c.noteDelete(ctx, args[1:])
	case "list":
		return c.noteList(ctx)
	case "get":
		return c.noteGet(ctx, args[1:])
	default:
		return fmt.Errorf("unknown note subcommand: %s", args[0])
	}
}

func (c *Cli) noteAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("note add", flag.ContinueOnError)
	title := fs.String("title", "", "Note title (required)")
	markdown := fs.String("markdown", "", "Note body in markdown")
	noteType := fs.String("type", "", "Note type (npc, location, item, ...)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	note := &models.Note{
		Title:      *title,
		Markdown:   *markdown,
		Type:       *noteType,
		CampaignID: c.campaign,
	}
	if err := c.dataService.CreateNote(ctx, c.campaign, note); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	fmt.Printf("Created note %s\n", note.ID)
	return nil
}

func (c *Cli) noteUpdate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing note id. Usage: campkeeper note update ID [--title T] [--markdown M]")
	}
	id := args[0]

	fs := flag.NewFlagSet("note update", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	markdown := fs.String("markdown", "", "New markdown body")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	fields := models.Doc{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			fields["title"] = *title
		case "markdown":
			fields["markdown"] = *markdown
		}
	})
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update, pass --title or --markdown")
	}

	if err := c.dataService.UpdateNote(ctx, c.campaign, id, fields); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	fmt.Printf("Updated note %s\n", id)
	return nil
}

func (c *Cli) noteDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing note id. Usage: campkeeper note delete ID")
	}

	if err := c.dataService.DeleteNote(ctx, c.campaign, args[0]); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	fmt.Printf("Deleted note %s\n", args[0])
	return nil
}

func (c *Cli) noteList(ctx context.Context) error {
	notes, err := c.dataService.ListNotes(ctx, c.campaign)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if len(notes) == 0 {
		fmt.Println("No notes found.")
		return nil
	}

	fmt.Printf("Found %d note(s):\n\n", len(notes))
	for _, note := range notes {
		fmt.Printf("  %v  %v", note["id"], note["title"])
		if t, ok := note["type"].(string); ok && t != "" {
			fmt.Printf("  (%s)", t)
		}
		fmt.Println()
	}
	return nil
}

func (c *Cli) noteGet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing note id. Usage: campkeeper note get ID")
	}

	note, err := c.dataService.GetNote(ctx, c.campaign, args[0])
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}

	fmt.Printf("ID:    %v\n", note["id"])
	fmt.Printf("Title: %v\n", note["title"])
	if t, ok := note["type"].(string); ok && t != "" {
		fmt.Printf("Type:  %s\n", t)
	}
	if md, ok := note["markdown"].(string); ok && md != "" {
		fmt.Printf("\n%s\n", md)
	}
	return nil
}
