package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevel(t *testing.T) {
	defer Logger.SetLevel(logrus.InfoLevel)

	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{"", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, false},
		{" WARN ", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"chatty", logrus.ErrorLevel, true},
	}

	for _, tt := range tests {
		err := SetLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if Logger.GetLevel() != tt.want {
			t.Errorf("SetLevel(%q): expected %s, got %s", tt.in, tt.want, Logger.GetLevel())
		}
	}
}

func TestWithFields_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	WithFields(logrus.Fields{"strategy": "hue-band", "percentage": 4.2}).Info("analysis complete")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "analysis complete" || entry["strategy"] != "hue-band" {
		t.Errorf("Unexpected entry %v", entry)
	}
	if entry["level"] != "info" {
		t.Errorf("Expected info level, got %v", entry["level"])
	}
}
