package artifacts

import (
	"fmt"
	"strings"
)

// renderQbitConf emits the first-boot qBittorrent.conf. The format is Qt's
// QSettings INI dialect: backslash-joined key paths, no spaces around '=',
// and @ByteArray values wrapped in double quotes. ini.v1 would reformat all
// three on write, so the handful of lines is built directly.
func renderQbitConf(username, passwordHash string, webPort int) []byte {
	var b strings.Builder
	b.WriteString("[BitTorrent]\n")
	b.WriteString("Session\\DefaultSavePath=/downloads\n")
	b.WriteString("Session\\TempPath=/downloads/incomplete\n")
	b.WriteString("Session\\TempPathEnabled=true\n")
	b.WriteString("\n")
	b.WriteString("[LegalNotice]\n")
	b.WriteString("Accepted=true\n")
	b.WriteString("\n")
	b.WriteString("[Preferences]\n")
	fmt.Fprintf(&b, "WebUI\\Password_PBKDF2=\"%s\"\n", passwordHash)
	fmt.Fprintf(&b, "WebUI\\Port=%d\n", webPort)
	fmt.Fprintf(&b, "WebUI\\Username=%s\n", username)
	return []byte(b.String())
}
