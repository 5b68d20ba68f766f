package cmd

import (
	"fmt"
	"time"

	units "github.com/docker/go-units"

	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/ovx"
	"github.com/projecteru2/ovxview/pipeline"
	"github.com/projecteru2/ovxview/render"
)

// initClient creates a backend client. One-off commands retry transient
// failures; the sync loop restarts whole cycles instead.
func initClient(retry bool) (*ovx.Client, error) {
	var opts []ovx.Option
	if retry {
		opts = append(opts, ovx.WithRetry())
	}
	client, err := ovx.New(conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("init backend client: %w", err)
	}
	return client, nil
}

// initPipeline wires the sync loop: backend client, layout renderer, geo
// placement and link cache.
func initPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, *config.Geo, error) {
	if err := conf.EnsureDirs(); err != nil {
		return nil, nil, fmt.Errorf("ensure dirs: %w", err)
	}
	client, err := initClient(false)
	if err != nil {
		return nil, nil, err
	}
	geo, err := config.LoadGeo(conf.GeoFile)
	if err != nil {
		return nil, nil, err
	}
	layout, err := render.NewLayoutClient(conf)
	if err != nil {
		return nil, nil, fmt.Errorf("init layout client: %w", err)
	}
	opts = append([]pipeline.Option{pipeline.WithGeo(geo)}, opts...)
	return pipeline.New(conf, client, render.New(layout), opts...), geo, nil
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return units.HumanDuration(time.Since(t)) + " ago"
}
