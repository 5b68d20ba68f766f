package cmd

import (
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/pipeline"
	"github.com/projecteru2/ovxview/server"
)

var serveCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll the controller and serve the dashboard API",
		RunE:  runServe,
	}
	cmd.Flags().String("listen", "", "dashboard API address")
	cmd.Flags().Bool("nopolling", false, "run one sync cycle, then only on demand")
	_ = viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("no_polling", cmd.Flags().Lookup("nopolling"))
	return cmd
}()

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.serve")

	hub := server.NewHub(0)
	pipe, _, err := initPipeline(pipeline.WithPublisher(hub))
	if err != nil {
		return err
	}
	srv := server.New(conf, pipe, hub)

	logger.Infof(ctx, "ovxview serving %s, backend %s, polling every %s", conf.Listen, conf.Backend, conf.UpdateInterval)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pipe.Run(ctx) })
	g.Go(func() error { return srv.Serve(ctx) })
	g.Go(func() error { return config.WatchGeo(ctx, conf.GeoFile, pipe.SetGeo) })
	return g.Wait()
}
