package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/topology"
)

var decomposeCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Split the physical topology into the core and per-core subgraphs",
		RunE:  runDecompose,
	}
	cmd.Flags().Bool("json", false, "print the decomposition as JSON")
	return cmd
}()

func runDecompose(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	asJSON, _ := cmd.Flags().GetBool("json")

	client, err := initClient(true)
	if err != nil {
		return err
	}
	geo, err := config.LoadGeo(conf.GeoFile)
	if err != nil {
		return err
	}
	topo, err := client.PhysicalTopology(ctx)
	if err != nil {
		return fmt.Errorf("decompose: %w", err)
	}
	d := topology.Decompose(&topo, geo.CoreSwitches)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	if len(d.Roots) == 0 {
		fmt.Println("No core switches found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CORE\tNAME\tSWITCHES\tLINKS")
	claimed := 0
	for _, root := range d.Roots {
		sg := d.SubGraphs[root]
		claimed += len(sg.Switches)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", root, geo.CoreSwitches[root].Name, len(sg.Switches), len(sg.Links))
	}
	w.Flush() //nolint:errcheck,gosec
	fmt.Printf("\n%d core links, %d/%d switches claimed\n", len(d.Core.Links), claimed, len(topo.Switches))
	return nil
}
