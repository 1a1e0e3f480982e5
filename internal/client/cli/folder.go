package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/campkeeper/internal/models"
)

func (c *Cli) runFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: campkeeper folder <add|delete|list>")
	}

	switch args[0] {
	case "add":
		return c.folderAdd(ctx, args[1:])
	case "delete":
		return c.folderDelete(ctx, args[1:])
	case "list":
		return c.folderList(ctx)
	default:
		return fmt.Errorf("unknown folder subcommand: %s", args[0])
	}
}

func (c *Cli) folderAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("folder add", flag.ContinueOnError)
	name := fs.String("name", "", "Folder name (required)")
	parent := fs.String("parent", "", "Parent folder id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	folder := &models.Folder{
		Name:       *name,
		ParentID:   *parent,
		CampaignID: c.campaign,
	}
	if err := c.dataService.SaveFolder(ctx, c.campaign, folder); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	fmt.Printf("Created folder %s\n", folder.ID)
	return nil
}

func (c *Cli) folderDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing folder id. Usage: campkeeper folder delete ID")
	}

	if err := c.dataService.DeleteFolder(ctx, c.campaign, args[0]); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	fmt.Printf("Deleted folder %s\n", args[0])
	return nil
}

func (c *Cli) folderList(ctx context.Context) error {
	folders, err := c.dataService.ListFolders(ctx, c.campaign)
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	if len(folders) == 0 {
		fmt.Println("No folders found.")
		return nil
	}

	fmt.Printf("Found %d folder(s):\n\n", len(folders))
	for _, folder := range folders {
		fmt.Printf("  %v  %v", folder["id"], folder["name"])
		if p, ok := folder["parentId"].(string); ok && p != "" {
			fmt.Printf("  (parent %s)", p)
		}
		fmt.Println()
	}
	return nil
}
