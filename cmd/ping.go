package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var pingCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Start or stop pings between virtual hosts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start SRC_MAC DST_MAC",
			Short: "Start a ping between two hosts",
			Args:  cobra.ExactArgs(2), //nolint:mnd
			RunE:  runPingStart,
		},
		&cobra.Command{
			Use:   "stop TENANT",
			Short: "Stop every ping of a virtual network",
			Args:  cobra.ExactArgs(1),
			RunE:  runPingStop,
		},
	)
	return cmd
}()

func runPingStart(cmd *cobra.Command, args []string) error {
	client, err := initClient(true)
	if err != nil {
		return err
	}
	if err := client.StartPing(commandContext(cmd), args[0], args[1]); err != nil {
		return fmt.Errorf("ping start: %w", err)
	}
	fmt.Printf("ping %s -> %s started\n", args[0], args[1])
	return nil
}

func runPingStop(cmd *cobra.Command, args []string) error {
	tenant, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid tenant %q: %w", args[0], err)
	}
	client, err := initClient(true)
	if err != nil {
		return err
	}
	if err := client.StopPing(commandContext(cmd), tenant); err != nil {
		return fmt.Errorf("ping stop: %w", err)
	}
	fmt.Printf("pings of tenant %d stopped\n", tenant)
	return nil
}
