package cmd

import (
	"fmt"
	"time"

	units "github.com/docker/go-units"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/projecteru2/ovxview/utils"
)

var waitCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait until the controller proxy answers",
		RunE:  runWait,
	}
	cmd.Flags().Duration("timeout", time.Minute, "give up after this long (0: wait forever)")
	cmd.Flags().Duration("interval", time.Second, "poll interval")
	return cmd
}()

func runWait(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.wait")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	interval, _ := cmd.Flags().GetDuration("interval")

	client, err := initClient(false)
	if err != nil {
		return err
	}
	start := time.Now()
	err = utils.WaitFor(ctx, timeout, interval, func() (bool, error) {
		if err := client.Ping(ctx); err != nil {
			logger.Debugf(ctx, "backend not ready: %v", err)
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", conf.Backend, err)
	}
	fmt.Printf("%s is up (waited %s)\n", conf.Backend, units.HumanDuration(time.Since(start)))
	return nil
}
