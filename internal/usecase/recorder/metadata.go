package recorder

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
)

// MetadataFileName is the manifest written beside every completed recording.
const MetadataFileName = "metadata.txt"

// WriteMetadata emits the human-readable manifest for a finished session into
// the session's output directory. It records what was captured and the
// environment it was captured on, so a bag copied to another machine stays
// self-describing.
func WriteMetadata(state *domain.RecordingState, settings config.LoggerConfig) error {
	if err := os.MkdirAll(state.BagPath, 0o755); err != nil {
		return domain.WrapOp("Recorder.WriteMetadata", err)
	}

	lines := []string{
		"bag_name: " + state.BagName,
		"bag_path: " + settings.BagPath,
		"date: " + time.Now().Format(time.RFC3339),
		"hostname: " + hostname(),
		"user: " + currentUser(),
		"ros_distro: " + rosDistro(),
		"kernel: " + kernelRelease(),
		"topics:",
	}
	for _, topic := range settings.Topics {
		lines = append(lines, "  - "+topic)
	}

	storage := "default"
	if settings.MCAP {
		storage = "MCAP"
	}
	compression := "disabled"
	if settings.Compress {
		compression = "enabled"
	}
	qosFile := settings.QoSSettings
	if qosFile == "" {
		qosFile = "none"
	}
	lines = append(lines,
		"storage: "+storage,
		"compression: "+compression,
		"max_bag_size: "+FormatLimit(settings.MaxBagSizeGB, "GB"),
		"duration: "+FormatLimit(settings.DurationMinutes, "minutes"),
		"qos_override_file: "+qosFile,
	)

	path := filepath.Join(state.BagPath, MetadataFileName)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return domain.WrapOp("Recorder.WriteMetadata", err)
	}
	return nil
}

// FormatLimit renders a numeric limit with its unit, or "unlimited" when the
// limit is unset. Shared with the CLI's settings banner.
func FormatLimit(value float64, unit string) string {
	if value <= 0 {
		return "unlimited"
	}
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + unit
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

func rosDistro() string {
	if distro := os.Getenv("ROS_DISTRO"); distro != "" {
		return distro
	}
	return "unknown"
}

func kernelRelease() string {
	data, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}
