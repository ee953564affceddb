package links

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/homebase/internal/cli"
	hblinks "github.com/julianstephens/homebase/internal/links"
	"github.com/julianstephens/homebase/internal/search"
)

type LinksCmd struct {
	List   LinksListCmd   `cmd:"" help:"List quick-access links." default:"1"`
	Add    LinksAddCmd    `cmd:"" help:"Add a quick-access link."`
	Edit   LinksEditCmd   `cmd:"" help:"Change a quick-access link."`
	Delete LinksDeleteCmd `cmd:"" aliases:"rm" help:"Delete a quick-access link."`
	Open   LinksOpenCmd   `cmd:"" help:"Open a quick-access link in your browser."`
}

type LinksListCmd struct{}

func (c *LinksListCmd) Run(ctx *cli.Context) error {
	links, err := ctx.Links.List(context.Background())
	if err != nil {
		return err
	}
	if len(links) == 0 {
		ctx.Println("No quick-access links yet. Add one with 'homebase links add <name> <url>'.")
		return nil
	}
	for _, l := range links {
		ctx.Println(FormatLink(l))
	}
	return nil
}

// FormatLink renders one link as a list line.
func FormatLink(l hblinks.Link) string {
	return fmt.Sprintf("%d  %s  %s  %s", l.ID, l.Name, l.URL, l.Color)
}

type LinksAddCmd struct {
	Name  string `arg:"" help:"Display name, e.g. Calendar."`
	URL   string `arg:"" name:"url" help:"Absolute http(s) URL."`
	Icon  string `help:"SVG path data for the icon."`
	Color string `help:"Hex color. Defaults to #3B82F6."`
}

func (c *LinksAddCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Links.Add(context.Background(), hblinks.Link{
		Name:  c.Name,
		URL:   c.URL,
		Icon:  c.Icon,
		Color: c.Color,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added link %d: %s\n", l.ID, l.Name)
	return nil
}

type LinksEditCmd struct {
	ID        int64  `arg:"" help:"Link ID."`
	Name      string `help:"New display name."`
	URL       string `name:"url" help:"New URL."`
	Icon      string `help:"New SVG path data for the icon."`
	Color     string `help:"New hex color."`
	ClearIcon bool   `help:"Remove the icon."`
}

func (c *LinksEditCmd) Run(ctx *cli.Context) error {
	if c.Name == "" && c.URL == "" && c.Icon == "" && c.Color == "" && !c.ClearIcon {
		return fmt.Errorf("nothing to change, pass --name, --url, --icon, --color or --clear-icon")
	}
	l, err := ctx.Links.Edit(context.Background(), c.ID, func(l *hblinks.Link) {
		if c.Name != "" {
			l.Name = c.Name
		}
		if c.URL != "" {
			l.URL = c.URL
		}
		if c.Color != "" {
			l.Color = c.Color
		}
		switch {
		case c.ClearIcon:
			l.Icon = ""
		case c.Icon != "":
			l.Icon = c.Icon
		}
	})
	if err != nil {
		return err
	}
	ctx.Println("✓ Updated " + FormatLink(l))
	return nil
}

type LinksDeleteCmd struct {
	ID int64 `arg:"" help:"Link ID."`
}

func (c *LinksDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Links.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted link %d\n", c.ID)
	return nil
}

type LinksOpenCmd struct {
	Link string `arg:"" help:"Link ID or name (case-insensitive)."`

	launcher search.Launcher
}

func (c *LinksOpenCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	links, err := ctx.Links.List(bg)
	if err != nil {
		return err
	}
	target, ok := find(links, c.Link)
	if !ok {
		return fmt.Errorf("%w: %s", hblinks.ErrNotFound, c.Link)
	}

	l := c.launcher
	if l == nil {
		l = search.OSLauncher{}
	}
	if err := l.Open(bg, target.URL); err != nil {
		return err
	}
	ctx.Printf("Opened %s\n", target.URL)
	return nil
}

func find(links []hblinks.Link, ref string) (hblinks.Link, bool) {
	ref = strings.TrimSpace(ref)
	for _, l := range links {
		if fmt.Sprint(l.ID) == ref || strings.EqualFold(l.Name, ref) {
			return l, true
		}
	}
	return hblinks.Link{}, false
}
