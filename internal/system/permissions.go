// Package system adjusts ownership of the directories easiarr creates.
//
// The linuxserver images run their app as PUID:PGID. When easiarr itself
// runs as root (sudo on a fresh host), freshly created config and media
// directories would end up root-owned and the containers could not write
// to them.
package system

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// Chown hands path to the stack user when running as root. A non-root
// easiarr cannot change ownership, and the directories it creates already
// belong to the invoking user, so the call is a no-op then.
func Chown(log zerolog.Logger, path, puid, pgid string) error {
	if os.Geteuid() != 0 {
		return nil
	}

	uid, err := strconv.Atoi(puid)
	if err != nil {
		return fmt.Errorf("puid %q is not numeric: %w", puid, err)
	}
	gid, err := strconv.Atoi(pgid)
	if err != nil {
		return fmt.Errorf("pgid %q is not numeric: %w", pgid, err)
	}

	if err := os.Chown(path, uid, gid); err != nil {
		return fmt.Errorf("failed to chown %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("uid", uid).Int("gid", gid).Msg("ownership adjusted")
	return nil
}
