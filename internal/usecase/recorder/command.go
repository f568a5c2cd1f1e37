package recorder

import (
	"os"
	"strconv"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
)

// BuildCommand constructs the ros2 bag record invocation for the given
// settings and output path. The flag order is fixed: storage format first,
// compression only when MCAP storage is on (the recorder rejects zstd
// compression with the default storage), then the QoS override, the size
// cap, and finally the topic list.
//
// A configured-but-missing QoS override file is skipped silently; the
// recorder would refuse to start on a dangling path and the override is an
// optional tuning knob. The builder does not check that ros2 itself exists.
func BuildCommand(settings config.LoggerConfig, outputPath string) ([]string, error) {
	if len(settings.Topics) == 0 {
		return nil, domain.NewDomainError("Recorder.BuildCommand", domain.ErrInvalidConfig,
			"no topics configured for recording")
	}

	cmd := []string{"ros2", "bag", "record", "-o", outputPath}

	if settings.MCAP {
		cmd = append(cmd, "--storage", "mcap")
		if settings.Compress {
			cmd = append(cmd, "--compression-mode", "file", "--compression-format", "zstd")
		}
	}

	if settings.OverrideQoS && settings.QoSSettings != "" {
		if _, err := os.Stat(settings.QoSSettings); err == nil {
			cmd = append(cmd, "--qos-profile-overrides-path", settings.QoSSettings)
		}
	}

	if settings.MaxBagSizeGB > 0 {
		maxBytes := int64(settings.MaxBagSizeGB * 1024 * 1024 * 1024)
		cmd = append(cmd, "--max-bag-size", strconv.FormatInt(maxBytes, 10))
	}

	cmd = append(cmd, settings.Topics...)
	return cmd, nil
}
