package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/nav"
	"github.com/clinaccel/reponav/pkg/validate"
)

var timeNow = time.Now

// resolveItem fetches the item an id names, treating a vanished item as an
// error at the command level.
func resolveItem(cmd *cobra.Command, a *app, id string) (*models.Item, error) {
	item, err := a.client.ResourceByID(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s is not accessible", id)
	}
	return item, nil
}

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [item-id]",
		Short: "List the children of an item (repository root by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parent *models.Item
			if len(args) == 1 {
				item, err := resolveItem(cmd, a, args[0])
				if err != nil {
					return err
				}
				parent = item
			}

			nodes, err := a.navigator.Nodes(cmd.Context(), parent)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tSIZE\tMODIFIED\tNAME")
			for _, node := range nodes {
				size := ""
				if node.Item.PrimaryType == models.ItemTypeFile {
					size = nav.FormatBytes(node.Item.Size, 0)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					node.Item.ID,
					node.Item.PrimaryType,
					size,
					nav.FormatDate(node.Item.ModifiedTimeStamp),
					node.Label)
			}
			return w.Flush()
		},
	}
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <item-id>",
		Short: "Show filesystem-style metadata for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}
			u := a.client.ItemURI(cmd.Context(), item, false)
			stat, err := a.navigator.Stat(cmd.Context(), u)
			if err != nil {
				return err
			}

			kind := "file"
			if stat.Dir {
				kind = "directory"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
				u, kind, nav.FormatBytes(stat.Size, 0), stat.Modified.Format(time.RFC3339))
			return nil
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <item-id>",
		Short: "Print the text content of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}
			content, err := a.navigator.Content(cmd.Context(), a.client.ItemURI(cmd.Context(), item, true))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <parent-id> <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.FolderName(args[1]); err != nil {
				return err
			}
			parent, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}
			_, err = a.navigator.CreateFolder(cmd.Context(), parent, args[1])
			return err
		},
	}
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <item-id> <new-name>",
		Short: "Rename an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}

			name := args[1]
			if item.IsContainer() {
				err = validate.FolderName(name)
			} else {
				err = validate.FileName(name)
			}
			if err != nil {
				return err
			}

			_, err = a.navigator.Rename(cmd.Context(), item, name)
			return err
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item-id>...",
		Short: "Move items to the recycle bin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]*models.Item, 0, len(args))
			for _, id := range args {
				item, err := resolveItem(cmd, a, id)
				if err != nil {
					return err
				}
				items = append(items, item)
			}
			if !a.navigator.Delete(cmd.Context(), items) {
				return fmt.Errorf("not all items could be deleted")
			}
			return nil
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	var expand bool
	var comment, version string

	cmd := &cobra.Command{
		Use:   "upload <parent-id> <file>...",
		Short: "Upload local files to a container",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Comment(comment); err != nil {
				return err
			}
			if err := validate.Version(version); err != nil {
				return err
			}
			parent, err := resolveItem(cmd, a, args[0])
			if err != nil {
				return err
			}

			files := make([]nav.UploadSpec, 0, len(args)-1)
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				files = append(files, nav.UploadSpec{Location: path, Content: data})
			}

			if !a.navigator.Upload(cmd.Context(), parent, files, expand, comment, version) {
				return fmt.Errorf("not all files could be uploaded")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "Extract archive contents after upload")
	cmd.Flags().StringVar(&comment, "comment", "", "Version comment for versioned targets")
	cmd.Flags().StringVar(&version, "version", "", "File version to assign (major.minor)")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "download <item-id>...",
		Short: "Download one item's content, or several as an archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]*models.Item, 0, len(args))
			for _, id := range args {
				item, err := resolveItem(cmd, a, id)
				if err != nil {
					return err
				}
				items = append(items, item)
			}

			destination := out
			if destination == "" {
				destination = items[0].Name
				if len(items) > 1 {
					destination = "download.zip"
				}
			}

			data, err := a.navigator.Download(cmd.Context(), items, destination)
			if err != nil {
				return err
			}
			return os.WriteFile(destination, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination path")
	return cmd
}
