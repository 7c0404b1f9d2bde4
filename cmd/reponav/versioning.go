package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clinaccel/reponav/pkg/nav"
	"github.com/clinaccel/reponav/pkg/validate"
)

func newVersionsCmd(a *app) *cobra.Command {
	var tooltips bool

	cmd := &cobra.Command{
		Use:   "versions <item-id>",
		Short: "Show the version history of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}

			panel, err := a.navigator.VersionPanelFor(cmd.Context(), item)
			if err != nil {
				return err
			}
			if len(panel.Entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), panel.Message)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", panel.Description, panel.Message)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSIZE\tCREATED BY\tCOMMENT")
			for _, entry := range panel.Entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					entry.Label,
					nav.FormatBytes(entry.Version.Size, 0),
					entry.Version.CreatedByDisplayName,
					entry.Comment)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if tooltips {
				for i := range panel.Entries {
					tooltip, err := a.navigator.VersionTooltip(cmd.Context(), &panel.Entries[i])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n%s\n", panel.Entries[i].Label, tooltip)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tooltips, "details", false, "Include the per-version detail summary")
	return cmd
}

func newEnableVersioningCmd(a *app) *cobra.Command {
	var comment, version string

	cmd := &cobra.Command{
		Use:   "enable-versioning <item-id>",
		Short: "Enable versioning for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Comment(comment); err != nil {
				return err
			}
			if err := validate.Version(version); err != nil {
				return err
			}
			item, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}
			if !a.navigator.EnableVersioning(cmd.Context(), item, comment, version) {
				return fmt.Errorf("versioning could not be enabled for %s", item.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Comment recorded on the initial version")
	cmd.Flags().StringVar(&version, "version", "", "Initial version number (major.minor)")
	return cmd
}

func newDisableVersioningCmd(a *app) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "disable-versioning <item-id>",
		Short: "Disable versioning for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Comment(comment); err != nil {
				return err
			}
			item, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}
			if !a.navigator.DisableVersioning(cmd.Context(), item, comment) {
				return fmt.Errorf("versioning could not be disabled for %s", item.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Comment recorded with the action")
	return cmd
}

func newPropertiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "properties <item-id>",
		Short: "Show the property list for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			for _, property := range a.navigator.Properties(item) {
				fmt.Fprintf(w, "%s\t%s\n", property.Label, property.Value)
			}
			return w.Flush()
		},
	}
}
