package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pomotaro/internal/service"
)

// CategoriesCmd groups the category subcommands.
type CategoriesCmd struct {
	List CategoriesListCmd `cmd:"" default:"1" help:"List categories"`
	Add  CategoriesAddCmd  `cmd:"" help:"Add a category"`
	Rm   CategoriesRmCmd   `cmd:"" help:"Delete a category (recorded sessions keep its name)"`
}

type CategoriesListCmd struct{}

func (c *CategoriesListCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	categories, err := a.Categories.List(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		fmt.Fprintln(g.out(), "No categories.")
		return nil
	}
	rows := make([][]string, len(categories))
	for i, cat := range categories {
		rows[i] = []string{strconv.Itoa(i + 1), strings.TrimSpace(cat.Icon + " " + cat.Name), cat.Color, shortID(cat.ID)}
	}
	renderTable(g.out(), []string{"#", "Name", "Color", "ID"}, rows)
	return nil
}

type CategoriesAddCmd struct {
	Name  string `arg:"" help:"Category name"`
	Color string `help:"Color as #RRGGBB (default: next palette color)"`
	Icon  string `help:"Optional emoji icon"`
}

func (c *CategoriesAddCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	cat, err := a.Categories.Create(ctx, service.CategoryInput{Name: c.Name, Color: c.Color, Icon: c.Icon})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Added category %q %s\n", cat.Name, cat.Color)
	return nil
}

type CategoriesRmCmd struct {
	Ref string `arg:"" help:"Category number, name, id or id prefix"`
}

func (c *CategoriesRmCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	cat, err := a.Categories.Resolve(ctx, c.Ref)
	if err != nil {
		return err
	}
	if err := a.Categories.Delete(ctx, cat.ID); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Deleted category %q\n", cat.Name)
	return nil
}
