package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	units "github.com/docker/go-units"
	"github.com/panjf2000/ants/v2"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
)

var flowtablesCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowtables [DPID...]",
		Short: "Fetch physical flowtables, all switches by default",
		RunE:  runFlowtables,
	}
	cmd.Flags().BoolP("verbose", "v", false, "print every flow")
	return cmd
}()

func runFlowtables(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.flowtables")
	verbose, _ := cmd.Flags().GetBool("verbose")

	client, err := initClient(true)
	if err != nil {
		return err
	}
	dpids := args
	if len(dpids) == 0 {
		topo, err := client.PhysicalTopology(ctx)
		if err != nil {
			return fmt.Errorf("flowtables: %w", err)
		}
		dpids = topo.Switches
	}

	pool, err := ants.NewPool(conf.PoolSize)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	tables, fetchErr := client.FlowtablesOf(ctx, pool, dpids)
	if fetchErr != nil {
		logger.Warnf(ctx, "some flowtables failed: %v", fetchErr)
	}

	keys := make([]string, 0, len(tables))
	for k := range tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DPID\tFLOWS")
	for _, dpid := range keys {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", dpid, len(tables[dpid]))
		if !verbose {
			continue
		}
		for _, row := range tables[dpid].Rows() {
			_, _ = fmt.Fprintf(w, "\t%s -> %s\n", strings.Join(row.Match, ","), strings.Join(row.Actions, "; "))
		}
	}
	w.Flush() //nolint:errcheck,gosec
	fmt.Printf("\n%d/%d switches in %s\n", len(tables), len(dpids), units.HumanDuration(time.Since(start)))
	return fetchErr
}
