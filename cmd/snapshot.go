package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/projecteru2/ovxview/render"
)

var snapshotCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Run one sync cycle and summarise the rendered views",
		RunE:  runSnapshot,
	}
	cmd.Flags().Int("tenant", 0, "virtual network to render (default: first listed)")
	cmd.Flags().String("out", "", "directory to write the rendered SVGs to")
	return cmd
}()

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	tenant, _ := cmd.Flags().GetInt("tenant")
	out, _ := cmd.Flags().GetString("out")

	pipe, _, err := initPipeline()
	if err != nil {
		return err
	}
	if tenant != 0 {
		pipe.SelectNetwork(tenant)
	}
	if err := pipe.RunOnce(ctx); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	st := pipe.State()
	views := []*render.Rendered{st.Physical(), st.Virtual()}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VIEW\tTENANT\tELEMENTS\tFLOWS\tPENDING\tINACTIVE\tUSED\tRENDERED")
	for _, v := range views {
		if v == nil {
			continue
		}
		tid := "-"
		if v.TenantID != 0 {
			tid = fmt.Sprint(v.TenantID)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			v.View, tid, len(v.Positions), len(v.FlowPaths),
			len(v.PendingIDs), len(v.Inactive), len(v.UsedElements), ago(v.RenderedAt))
	}
	w.Flush() //nolint:errcheck,gosec

	if out == "" {
		return nil
	}
	if err := os.MkdirAll(out, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	for _, v := range views {
		if v == nil {
			continue
		}
		path := filepath.Join(out, string(v.View)+".svg")
		if err := os.WriteFile(path, []byte(v.SVG), 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Println("wrote", path)
	}
	return nil
}
