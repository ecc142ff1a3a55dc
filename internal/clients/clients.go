// Package clients defines the contract every per-app API client satisfies
// and the small helpers they share. Each application lives in its own
// subpackage; the provisioning engine drives them all through the Client
// interface.
package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Client is the uniform probe surface of an app client. Health answers "is
// the service up and talking to us"; Initialized answers "has easiarr
// already configured it", which is what makes provisioning re-entrant.
type Client interface {
	Health(ctx context.Context) error
	Initialized(ctx context.Context) (bool, error)
}

// QbitConnection describes how an app reaches qBittorrent inside the
// compose network, plus the category its downloads are filed under.
type QbitConnection struct {
	Host     string
	Port     int
	Username string
	Password string
	Category string
}

// TrimVersion reduces the four-segment build versions the *arr apps report
// (e.g. 5.2.6.8376) to the three semver cares about.
func TrimVersion(v string) string {
	parts := strings.Split(v, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ".")
}

// CheckMinimum fails when current is older than minimum. Unparseable
// versions fail too: an app reporting garbage is not one to configure.
func CheckMinimum(current, minimum string) error {
	cur, err := semver.NewVersion(TrimVersion(current))
	if err != nil {
		return fmt.Errorf("unparseable version %q: %w", current, err)
	}
	min, err := semver.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("unparseable minimum version %q: %w", minimum, err)
	}
	if cur.LessThan(min) {
		return fmt.Errorf("version %s is older than the supported minimum %s", current, minimum)
	}
	return nil
}
