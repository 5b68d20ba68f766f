package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var linkCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Bring physical links up or down",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up SRC_DPID DST_DPID",
			Short: "Bring the link between two switches up",
			Args:  cobra.ExactArgs(2), //nolint:mnd
			RunE:  func(cmd *cobra.Command, args []string) error { return runLink(cmd, true, args[0], args[1]) },
		},
		&cobra.Command{
			Use:   "down SRC_DPID DST_DPID",
			Short: "Take the link between two switches down",
			Args:  cobra.ExactArgs(2), //nolint:mnd
			RunE:  func(cmd *cobra.Command, args []string) error { return runLink(cmd, false, args[0], args[1]) },
		},
	)
	return cmd
}()

func runLink(cmd *cobra.Command, up bool, src, dst string) error {
	ctx := commandContext(cmd)
	client, err := initClient(true)
	if err != nil {
		return err
	}
	act, verb := client.LinkDown, "down"
	if up {
		act, verb = client.LinkUp, "up"
	}
	if err := act(ctx, src, dst); err != nil {
		return fmt.Errorf("link %s: %w", verb, err)
	}
	fmt.Printf("link %s-%s %s requested\n", src, dst, verb)
	return nil
}
