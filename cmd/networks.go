package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/projecteru2/ovxview/config"
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"nets"},
	Short:   "List virtual networks",
	RunE:    runNetworks,
}

func runNetworks(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	client, err := initClient(true)
	if err != nil {
		return err
	}
	geo, err := config.LoadGeo(conf.GeoFile)
	if err != nil {
		return err
	}
	ids, err := client.VirtualNetworks(ctx)
	if err != nil {
		return fmt.Errorf("networks: %w", err)
	}
	if len(ids) == 0 {
		fmt.Println("No virtual networks found.")
		return nil
	}
	sort.Ints(ids)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TENANT\tNAME")
	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", id, geo.NetworkName(id))
	}
	w.Flush() //nolint:errcheck,gosec
	return nil
}
