package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"idservices-admin/internal/appstate"
	"idservices-admin/internal/auth"
	"idservices-admin/internal/fetch"
	"idservices-admin/internal/registry"
	"idservices-admin/internal/search"
	"idservices-admin/internal/ui"
	"idservices-admin/internal/views"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the resources known to the console",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _ := cmd.Flags().GetString("service")
		return RunResources(cmd.OutOrStdout(), service)
	},
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Print one page of a resource list",
	Long: `Print one page of a resource list.

Example:
  idadmin list isbn-publishers --search "Kustannus" --page 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchText, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		status, _ := cmd.Flags().GetString("status")
		opts := listOptions{
			Search: searchText,
			Page:   page,
			Limit:  limit,
			Status: status,
		}
		if cmd.Flags().Changed("category") {
			v, _ := cmd.Flags().GetInt("category")
			opts.Category = &v
		}
		if cmd.Flags().Changed("year") {
			v, _ := cmd.Flags().GetInt("year")
			opts.Year = &v
		}
		return RunList(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Print one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("json")
		return RunGet(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], raw)
	},
}

func init() {
	resourcesCmd.Flags().String("service", "", "Only resources of one registry (isbn, issn)")

	listCmd.Flags().String("search", "", "Search text")
	listCmd.Flags().Int("page", 1, "Page number, starting at 1")
	listCmd.Flags().Int("limit", search.DefaultLimit, "Rows per page")
	listCmd.Flags().String("status", "", "Status filter (see the resource's tabs)")
	listCmd.Flags().Int("category", 0, "Category filter")
	listCmd.Flags().Int("year", 0, "Year filter")

	getCmd.Flags().Bool("json", false, "Print the raw record")
}

type listOptions struct {
	Search   string
	Page     int
	Limit    int
	Status   string
	Category *int
	Year     *int
}

// RunResources prints the catalogue as "name  title  route".
func RunResources(out io.Writer, service string) error {
	for _, r := range catalogue.All() {
		if service != "" && string(r.Service) != service {
			continue
		}
		fmt.Fprintf(out, "%-32s %-28s %s\n", r.Name, r.Title, r.Route)
	}
	return nil
}

// RunList fetches one page through the list view model and prints it.
func RunList(ctx context.Context, out io.Writer, name string, opts listOptions) error {
	res, err := lookupResource(name)
	if err != nil {
		return err
	}
	deps, err := newDeps()
	if err != nil {
		return err
	}

	body := res.DefaultBody.Clone()
	body.SearchText = opts.Search
	if opts.Limit > 0 {
		body.Limit = opts.Limit
	}
	if opts.Page > 1 {
		body.Offset = (opts.Page - 1) * body.Limit
	}
	if opts.Status != "" {
		status := opts.Status
		body.Status = &status
	}
	if opts.Category != nil {
		body.Category = opts.Category
	}
	if opts.Year != nil {
		body.Year = opts.Year
	}
	if err := body.Validate(); err != nil {
		return fmt.Errorf("invalid search: %w", err)
	}

	list := views.NewListView(deps, res, &body)
	defer list.Close()

	if err := wait(ctx, list.Refresh(ctx)); err != nil {
		return err
	}
	st := list.State()
	if st.HasError() {
		return st.Err
	}

	rows := list.Rows()
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = append([]string{r.ID}, r.Cells...)
	}
	fmt.Fprintln(out, ui.Table(ui.TableProps{
		HeadRows:    append([]string{"ID"}, res.HeadRows()...),
		Rows:        cells,
		Page:        body.Page(),
		TotalDoc:    st.Data.TotalDoc,
		RowsPerPage: body.Limit,
		Selected:    -1,
	}))
	return nil
}

// RunGet fetches one record through the detail view model and prints it.
func RunGet(ctx context.Context, out io.Writer, name, id string, raw bool) error {
	res, err := lookupResource(name)
	if err != nil {
		return err
	}
	deps, err := newDeps()
	if err != nil {
		return err
	}

	detail := views.NewDetailView(deps, res, id, res.DefaultBody)
	defer detail.Close()

	if err := wait(ctx, detail.Refresh(ctx)); err != nil {
		return err
	}
	st := detail.State()
	if st.HasError() {
		return st.Err
	}

	if raw {
		var pretty strings.Builder
		enc := json.NewEncoder(&pretty)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st.Data); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		fmt.Fprint(out, pretty.String())
		return nil
	}

	fmt.Fprintln(out, recordText(res, st.Data))
	return nil
}

func recordText(res registry.Resource, rec json.RawMessage) string {
	row := res.Row(rec)
	width := 0
	for _, c := range res.Columns {
		width = max(width, len(c.Label))
	}
	lines := make([]string, 0, len(res.Columns)+1)
	lines = append(lines, fmt.Sprintf("%-*s  %s", width, "ID", row.ID))
	for i, c := range res.Columns {
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, c.Label, row.Cells[i]))
	}
	return strings.Join(lines, "\n")
}

// newDeps wires views for a single non-interactive command. The app state
// is not persisted.
func newDeps() (views.Deps, error) {
	session, err := newSession()
	if err != nil {
		return views.Deps{}, err
	}
	return views.Deps{
		Caller: newClient(cfg.Registry.APIURL),
		Tokens: session,
		State:  appstate.NewStore(appstate.State{}, nil),
	}, nil
}

// wait blocks until job settles. A nil job means no request was started,
// which for a command only happens without a usable token.
func wait(ctx context.Context, job *fetch.Job) error {
	if job == nil {
		return fmt.Errorf("%w: pass --token or --token-file", auth.ErrNoToken)
	}
	return job.Wait(ctx)
}
