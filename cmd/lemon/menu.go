package lemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/service"
)

var (
	menuJSON   bool
	menuImages bool
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List, search, and browse the menu",
}

var menuListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every dish, fetching the menu on first use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			items, _ := a.catalog.Init(cmd.Context())
			return renderMenu(cmd, a, items)
		})
	},
}

var menuSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Show dishes whose name contains text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			a.catalog.Init(cmd.Context())
			items, err := a.catalog.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderMenu(cmd, a, items)
		})
	},
}

var menuBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search interactively; each input line replaces the search phrase",
	Long: "browse reads search phrases from stdin, one per line. A search runs once typing pauses for the configured debounce;\n" +
		"only the newest phrase is ever shown. End input (Ctrl-D) to run the last phrase immediately and exit.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *appEnv) error {
			ctx := cmd.Context()
			items, _ := a.catalog.Init(ctx)
			printMenu(cmd, items, a.cfg.ImageURLTemplate, menuImages)

			ctrl := service.NewSearchController(a.catalog, a.cfg.SearchDebounce, items,
				service.WithSearchLogger(a.log),
				service.OnApply(func(text string, found []model.MenuItem) {
					fmt.Fprintf(cmd.OutOrStdout(), "\nResults for %q:\n", text)
					printMenu(cmd, found, a.cfg.ImageURLTemplate, menuImages)
				}),
			)
			defer ctrl.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), "Enter search phrase (Ctrl-D to finish)")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				ctrl.SetText(strings.TrimSpace(scanner.Text()))
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read search input: %w", err)
			}
			ctrl.Flush()
			return nil
		})
	},
}

func renderMenu(cmd *cobra.Command, a *appEnv, items []model.MenuItem) error {
	if !menuJSON {
		printMenu(cmd, items, a.cfg.ImageURLTemplate, menuImages)
		return nil
	}
	type jsonItem struct {
		model.MenuItem
		ImageURL string `json:"image_url"`
	}
	out := make([]jsonItem, 0, len(items))
	for _, it := range items {
		out = append(out, jsonItem{MenuItem: it, ImageURL: service.ImageURL(a.cfg.ImageURLTemplate, it.Image)})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.AddCommand(menuListCmd, menuSearchCmd, menuBrowseCmd)
	for _, c := range []*cobra.Command{menuListCmd, menuSearchCmd} {
		c.Flags().BoolVar(&menuJSON, "json", false, "Output JSON")
	}
	for _, c := range []*cobra.Command{menuListCmd, menuSearchCmd, menuBrowseCmd} {
		c.Flags().BoolVar(&menuImages, "images", false, "Show image URLs")
	}
}
