package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joestump/kernel-prism/internal/kernel"
)

type catalogEntry struct {
	Domain     kernel.Domain     `yaml:"domain"`
	Title      string            `yaml:"title"`
	Categories []catalogCategory `yaml:"categories"`
}

type catalogCategory struct {
	ID      string   `yaml:"id"`
	Key     string   `yaml:"key"`
	Label   string   `yaml:"label"`
	Options []string `yaml:"options"`
}

func newCatalogCmd() *cobra.Command {
	var domain, format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in categories and their options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			domains := kernel.Domains()
			if domain != "" {
				d, err := kernel.ParseDomain(domain)
				if err != nil {
					return err
				}
				domains = []kernel.Domain{d}
			}
			entries := buildCatalog(domains)

			switch format {
			case "text":
				return writeCatalogText(cmd.OutOrStdout(), entries)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(entries)
			default:
				return fmt.Errorf("unknown format %q (want text or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "only this domain")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text or yaml")
	return cmd
}

func buildCatalog(domains []kernel.Domain) []catalogEntry {
	entries := make([]catalogEntry, 0, len(domains))
	for _, d := range domains {
		e := catalogEntry{Domain: d, Title: d.Title(), Categories: []catalogCategory{}}
		for _, c := range kernel.DefaultCategories(d) {
			e.Categories = append(e.Categories, catalogCategory{
				ID:      c.ID,
				Key:     kernel.LabelKey(c.Label),
				Label:   c.Label,
				Options: c.Options,
			})
		}
		entries = append(entries, e)
	}
	return entries
}

func writeCatalogText(w io.Writer, entries []catalogEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\t%s\n", e.Domain, e.Title)
		if len(e.Categories) == 0 {
			fmt.Fprintln(tw, "  (no built-in categories)")
		}
		for _, c := range e.Categories {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", c.Key, c.ID, c.Label, strings.Join(c.Options, ", "))
		}
	}
	return tw.Flush()
}
