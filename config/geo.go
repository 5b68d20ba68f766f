package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/projecteru2/ovxview/types"
)

// Geo is the static placement data: which switches form the backbone and
// where they are, plus display names of virtual networks.
type Geo struct {
	CoreSwitches types.CoreSwitches `json:"core_switches" mapstructure:"core_switches"`
	// Networks maps tenant id to display name.
	Networks map[string]string `json:"networks" mapstructure:"networks"`
}

// NetworkName returns the display name of a tenant, falling back to its id.
func (g *Geo) NetworkName(tenantID int) string {
	id := strconv.Itoa(tenantID)
	if name, ok := g.Networks[id]; ok && name != "" {
		return name
	}
	return "Network " + id
}

// DefaultGeo is the demo backbone: eleven US airports.
func DefaultGeo() *Geo {
	return &Geo{
		CoreSwitches: types.CoreSwitches{
			"00:00:00:00:00:01:00:00": {Name: "SFO", Pos: [2]float64{-122.386665, 37.616611}},
			"00:00:00:00:00:02:00:00": {Name: "SEA", Pos: [2]float64{-122.33242, 47.611024}},
			"00:00:00:00:00:03:00:00": {Name: "LAX", Pos: [2]float64{-118.238983, 34.102708}},
			"00:00:00:00:00:04:00:00": {Name: "ATL", Pos: [2]float64{-84.387360, 33.758599}},
			"00:00:00:00:00:05:00:00": {Name: "IAD", Pos: [2]float64{-77.447605, 38.956205}},
			"00:00:00:00:00:06:00:00": {Name: "EWR", Pos: [2]float64{-74.161921, 40.714802}},
			"00:00:00:00:00:07:00:00": {Name: "SLC", Pos: [2]float64{-111.891289, 41.766242}},
			"00:00:00:00:00:08:00:00": {Name: "MCI", Pos: [2]float64{-94.716311, 39.299768}},
			"00:00:00:00:00:09:00:00": {Name: "ORD", Pos: [2]float64{-87.902212, 41.981634}},
			"00:00:00:00:00:0a:00:00": {Name: "CLE", Pos: [2]float64{-81.836257, 41.411256}},
			"00:00:00:00:00:0b:00:00": {Name: "IAH", Pos: [2]float64{-97.338122, 32.586944}},
		},
		Networks: map[string]string{
			"1": "Giant Switch",
			"2": "Physical Clone",
			"3": "Ring",
			"4": "Diamond",
			"5": "Timezones",
		},
	}
}

// LoadGeo reads path (JSON, YAML or TOML by extension). An empty path
// returns DefaultGeo. Switch ids are lowercased, matching how the
// controller formats dpids.
func LoadGeo(path string) (*Geo, error) {
	if path == "" {
		return DefaultGeo(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read geo file %s: %w", path, err)
	}
	geo := &Geo{}
	if err := v.Unmarshal(geo); err != nil {
		return nil, fmt.Errorf("parse geo file %s: %w", path, err)
	}
	core := make(types.CoreSwitches, len(geo.CoreSwitches))
	for dpid, cs := range geo.CoreSwitches {
		core[strings.ToLower(dpid)] = cs
	}
	geo.CoreSwitches = core
	return geo, nil
}
