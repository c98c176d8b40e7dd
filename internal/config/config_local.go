//go:build !gcloud

package config

import (
	"fmt"
	"net/url"
)

// Validate checks the Expo transport used outside Google Cloud.
func (c *NotifierConfig) Validate() error {
	u, err := url.Parse(c.ExpoEndpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidExpoEndpoint, c.ExpoEndpoint)
	}
	if c.ExpoMaxRequestsPerSecond < 0 {
		return ErrNegativeExpoRate
	}
	return nil
}
