package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/campkeeper/internal/models"
)

func (c *Cli) runLink(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: campkeeper link <add|delete|list>")
	}

	switch args[0] {
	case "add":
		return c.linkAdd(ctx, args[1:])
	case "delete":
		return c.linkDelete(ctx, args[1:])
	case "list":
		return c.linkList(ctx)
	default:
		return fmt.Errorf("unknown link subcommand: %s", args[0])
	}
}

func (c *Cli) linkAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("link add", flag.ContinueOnError)
	from := fs.String("from", "", "Source note id (required)")
	to := fs.String("to", "", "Target note id (required)")
	relType := fs.String("type", "", "Relationship type, e.g. KNOWS (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *from == "" || *to == "" || *relType == "" {
		return fmt.Errorf("--from, --to and --type are required")
	}

	edge := &models.Edge{
		FromID:     *from,
		ToID:       *to,
		RelType:    *relType,
		CampaignID: c.campaign,
	}
	if err := c.dataService.SaveEdge(ctx, c.campaign, edge); err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	fmt.Printf("Created link %s\n", edge.ID)
	return nil
}

func (c *Cli) linkDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing link id. Usage: campkeeper link delete ID")
	}

	if err := c.dataService.DeleteEdge(ctx, c.campaign, args[0]); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	fmt.Printf("Deleted link %s\n", args[0])
	return nil
}

func (c *Cli) linkList(ctx context.Context) error {
	edges, err := c.dataService.ListEdges(ctx, c.campaign)
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}

	if len(edges) == 0 {
		fmt.Println("No links found.")
		return nil
	}

	fmt.Printf("Found %d link(s):\n\n", len(edges))
	for _, edge := range edges {
		fmt.Printf("  %v  %v -[%v]-> %v\n", edge["id"], edge["fromId"], edge["relType"], edge["toId"])
	}
	return nil
}
