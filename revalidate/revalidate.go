package revalidate

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"

	"studioadmin/utils"
)

// Client signals the rendering layer that a path's cached output is stale.
// Signals are best-effort freshness hints: they run in the background and
// failures are only logged.
type Client struct {
	url     string
	secret  string
	timeout time.Duration
}

// New creates a revalidation client. An empty URL disables signaling.
func New(url, secret string) *Client {
	return &Client{
		url:     url,
		secret:  secret,
		timeout: 5 * time.Second,
	}
}

type payload struct {
	Path   string `json:"path"`
	Secret string `json:"secret"`
}

// Revalidate fires the signal for one path and returns immediately.
func (c *Client) Revalidate(path string) {
	if c.url == "" {
		return
	}

	go func() {
		body, err := json.Marshal(payload{Path: path, Secret: c.secret})
		if err != nil {
			return
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(c.url)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.SetBody(body)

		if err := fasthttp.DoTimeout(req, resp, c.timeout); err != nil {
			utils.Log.Warn("Revalidation signal for %s failed: %v", path, err)
			return
		}
		if resp.StatusCode() >= 400 {
			utils.Log.Warn("Revalidation signal for %s rejected: status %d", path, resp.StatusCode())
		}
	}()
}
