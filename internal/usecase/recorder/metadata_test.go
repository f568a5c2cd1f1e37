package recorder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
)

func TestWriteMetadata(t *testing.T) {
	bagPath := filepath.Join(t.TempDir(), "agi_log_20260830_120000")
	state := &domain.RecordingState{
		PID:       0,
		BagName:   "agi_log_20260830_120000",
		BagPath:   bagPath,
		StartTime: time.Now(),
		Command:   []string{"ros2", "bag", "record"},
	}
	settings := config.LoggerConfig{
		Topics:          []string{"/fmu/out/vehicle_status", "/camera/image_raw"},
		BagPath:         filepath.Dir(bagPath),
		MCAP:            true,
		Compress:        false,
		MaxBagSizeGB:    2,
		DurationMinutes: 0,
	}

	if err := WriteMetadata(state, settings); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(bagPath, MetadataFileName))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"bag_name: agi_log_20260830_120000",
		"bag_path: " + settings.BagPath,
		"topics:",
		"  - /fmu/out/vehicle_status",
		"  - /camera/image_raw",
		"storage: MCAP",
		"compression: disabled",
		"max_bag_size: 2 GB",
		"duration: unlimited",
		"qos_override_file: none",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("manifest missing %q\n%s", want, content)
		}
	}

	// Topic list must appear verbatim and in order.
	first := strings.Index(content, "/fmu/out/vehicle_status")
	second := strings.Index(content, "/camera/image_raw")
	if first < 0 || second < 0 || second < first {
		t.Error("topics must be recorded in input order")
	}
}

func TestWriteMetadataCreatesDirectory(t *testing.T) {
	bagPath := filepath.Join(t.TempDir(), "nested", "agi_log_x")
	state := &domain.RecordingState{BagName: "agi_log_x", BagPath: bagPath}

	if err := WriteMetadata(state, config.LoggerConfig{Topics: []string{"/a"}}); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	if _, err := os.Stat(filepath.Join(bagPath, MetadataFileName)); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestFormatLimit(t *testing.T) {
	tests := []struct {
		value float64
		unit  string
		want  string
	}{
		{0, "GB", "unlimited"},
		{-1, "minutes", "unlimited"},
		{2, "GB", "2 GB"},
		{2.5, "GB", "2.5 GB"},
		{5, "minutes", "5 minutes"},
	}
	for _, tt := range tests {
		if got := FormatLimit(tt.value, tt.unit); got != tt.want {
			t.Errorf("FormatLimit(%v, %q) = %q, want %q", tt.value, tt.unit, got, tt.want)
		}
	}
}
