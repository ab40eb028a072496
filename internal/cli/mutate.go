package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"idservices-admin/internal/views"
)

var ErrInvalidRecord = errors.New("record is not valid JSON")

var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record from JSON",
	Long: `Create a record from JSON given inline, in a file or on stdin.

Example:
  idadmin create isbn-publishers --file publisher.json
  echo '{"officialName":"Kustannus Oy"}' | idadmin create isbn-publishers --file -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := readRecord(cmd)
		if err != nil {
			return err
		}
		return RunCreate(cmd.Context(), cmd.OutOrStdout(), args[0], rec)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Replace a record with JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := readRecord(cmd)
		if err != nil {
			return err
		}
		return RunUpdate(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], rec)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunDelete(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().String("data", "", "Record as inline JSON")
		c.Flags().String("file", "", "Read the record from a file, - for stdin")
		c.MarkFlagsMutuallyExclusive("data", "file")
		c.MarkFlagsOneRequired("data", "file")
	}
}

// readRecord returns the --data or --file JSON of a create or update.
func readRecord(cmd *cobra.Command) (json.RawMessage, error) {
	data, _ := cmd.Flags().GetString("data")
	path, _ := cmd.Flags().GetString("file")

	raw := []byte(data)
	switch {
	case path == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read record file: %w", err)
		}
		raw = b
	}

	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		return nil, ErrInvalidRecord
	}
	return raw, nil
}

// RunCreate posts rec to the resource's record endpoint and prints the
// stored record.
func RunCreate(ctx context.Context, out io.Writer, name string, rec json.RawMessage) error {
	res, err := lookupResource(name)
	if err != nil {
		return err
	}
	mutations, err := newMutations()
	if err != nil {
		return err
	}

	saved, err := mutations.Create(ctx, res.ItemPath, rec, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Created")
	printSaved(out, res.Title, saved)
	return nil
}

func RunUpdate(ctx context.Context, out io.Writer, name, id string, rec json.RawMessage) error {
	res, err := lookupResource(name)
	if err != nil {
		return err
	}
	mutations, err := newMutations()
	if err != nil {
		return err
	}

	saved, err := mutations.Update(ctx, res.ItemURL(id), rec, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %s\n", id)
	printSaved(out, res.Title, saved)
	return nil
}

func RunDelete(ctx context.Context, out io.Writer, name, id string) error {
	res, err := lookupResource(name)
	if err != nil {
		return err
	}
	if res.ReadOnly {
		return fmt.Errorf("%s are read-only", res.Title)
	}
	mutations, err := newMutations()
	if err != nil {
		return err
	}

	if err := mutations.Delete(ctx, res.ItemURL(id), ""); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s\n", id)
	return nil
}

func newMutations() (*views.Mutations, error) {
	deps, err := newDeps()
	if err != nil {
		return nil, err
	}
	return views.NewMutations(deps), nil
}

func printSaved(out io.Writer, title string, saved json.RawMessage) {
	if len(bytes.TrimSpace(saved)) == 0 {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, saved, "", "  "); err != nil {
		return
	}
	fmt.Fprintf(out, "%s record:\n%s\n", title, pretty.String())
}
