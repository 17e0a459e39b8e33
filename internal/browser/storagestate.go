package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

// StorageState is the session blob written by the login flow. The layout is
// the one Playwright's storage_state produces, so existing auth.json files
// load unchanged.
type StorageState struct {
	Cookies []StoredCookie `json:"cookies"`
	Origins []StoredOrigin `json:"origins"`
}

type StoredCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

type StoredOrigin struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func LoadStorageState(path string) (*StorageState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage state: %w", err)
	}
	var state StorageState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to parse storage state %s: %w", path, err)
	}
	return &state, nil
}

// CookieParams converts the stored cookies for Network.setCookies. Session
// cookies (expires <= 0) stay session cookies.
func (s *StorageState) CookieParams() []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if c.Name == "" {
			continue
		}
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if c.Expires > 0 {
			sec := int64(c.Expires)
			nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
			expires := cdp.TimeSinceEpoch(time.Unix(sec, nsec))
			p.Expires = &expires
		}
		switch c.SameSite {
		case "Strict":
			p.SameSite = network.CookieSameSiteStrict
		case "Lax":
			p.SameSite = network.CookieSameSiteLax
		case "None":
			p.SameSite = network.CookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}

// LocalStorageScript returns a script that seeds localStorage for whichever
// stored origin the new document belongs to. Empty when nothing is stored.
func (s *StorageState) LocalStorageScript() (string, error) {
	byOrigin := make(map[string]map[string]string)
	for _, o := range s.Origins {
		if len(o.LocalStorage) == 0 {
			continue
		}
		items := make(map[string]string, len(o.LocalStorage))
		for _, kv := range o.LocalStorage {
			items[kv.Name] = kv.Value
		}
		byOrigin[o.Origin] = items
	}
	if len(byOrigin) == 0 {
		return "", nil
	}

	encoded, err := json.Marshal(byOrigin)
	if err != nil {
		return "", fmt.Errorf("failed to encode local storage: %w", err)
	}
	return fmt.Sprintf(`(function () {
  var stored = %s;
  var items = stored[window.location.origin];
  if (!items) { return; }
  for (var key in items) {
    try { window.localStorage.setItem(key, items[key]); } catch (e) {}
  }
})();`, encoded), nil
}
