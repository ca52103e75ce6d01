package relay

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/tonsky/tonsky.me/internal/domain"
)

const Path = "/ptrs"

// PageURL builds the relay URL for a page. The relay lives on the page's own
// host unless base overrides it: http pages use ws, everything else wss.
func PageURL(pageURL, base string, handle int64, platform domain.Platform) (string, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}

	var u *url.URL
	if base != "" {
		if u, err = url.Parse(base); err != nil {
			return "", fmt.Errorf("parse relay url: %w", err)
		}
	} else {
		scheme := "wss"
		if page.Scheme == "http" {
			scheme = "ws"
		}
		u = &url.URL{Scheme: scheme, Host: page.Host, Path: Path}
	}

	pagePath := page.Path
	if pagePath == "" {
		pagePath = "/"
	}
	q := u.Query()
	q.Set("id", strconv.FormatInt(handle, 10))
	q.Set("page", pagePath)
	q.Set("platform", string(platform))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
