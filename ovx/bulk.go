package ovx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/types"
)

// FlowtablesOf fetches the physical flowtables of dpids concurrently on
// pool. Tables that could not be fetched are missing from the result and
// their errors are joined.
func (c *Client) FlowtablesOf(ctx context.Context, pool *ants.Pool, dpids []string) (map[string]types.Flowtable, error) {
	logger := log.WithFunc("ovx.FlowtablesOf")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		tables = make(map[string]types.Flowtable, len(dpids))
	)
	for _, dpid := range dpids {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			ft, err := c.PhysicalFlowtable(ctx, dpid)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("switch %s: %w", dpid, err))
				return
			}
			tables[dpid] = ft
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit switch %s: %w", dpid, submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	logger.Debugf(ctx, "fetched %d/%d flowtables", len(tables), len(dpids))
	return tables, errors.Join(errs...)
}
