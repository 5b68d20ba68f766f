package ovx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/projecteru2/ovxview/utils"
)

func (c *Client) action(ctx context.Context, name string, query url.Values) error {
	u := c.endpoint(name, query)
	call := func() (struct{}, error) {
		_, err := utils.DoAPI(ctx, c.hc, http.MethodGet, u, nil, http.StatusOK)
		return struct{}{}, err
	}
	if !c.retry {
		_, err := call()
		return err
	}
	_, err := utils.DoWithRetry(ctx, call)
	return err
}

// LinkUp calls linkup. The proxy expects upper-case dpids.
func (c *Client) LinkUp(ctx context.Context, src, dst string) error {
	return c.action(ctx, "linkup", url.Values{"src": {strings.ToUpper(src)}, "dst": {strings.ToUpper(dst)}})
}

// LinkDown calls linkdown. The proxy expects upper-case dpids.
func (c *Client) LinkDown(ctx context.Context, src, dst string) error {
	return c.action(ctx, "linkdown", url.Values{"src": {strings.ToUpper(src)}, "dst": {strings.ToUpper(dst)}})
}

// StartPing calls startPing. Flow paths are keyed by lower-case MACs.
func (c *Client) StartPing(ctx context.Context, srcMAC, dstMAC string) error {
	return c.action(ctx, "startPing", url.Values{"src": {strings.ToLower(srcMAC)}, "dst": {strings.ToLower(dstMAC)}})
}

// StopPing calls stopPing for every ping of the tenant.
func (c *Client) StopPing(ctx context.Context, tenantID int) error {
	return c.action(ctx, "stopPing", url.Values{"tenantId": {strconv.Itoa(tenantID)}})
}
