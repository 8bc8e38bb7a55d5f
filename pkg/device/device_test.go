package device

import (
	"log/slog"

	"github.com/raterudder/wifisetup/pkg/log"
)

func init() {
	log.SetDefaultLogLevel(slog.LevelError)
}
