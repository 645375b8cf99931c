package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sys-monitor/internal/models"
)

func TestInitLoggerWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "monitor.log")
	toStd := false
	require.NoError(t, InitLogger(&models.Config{
		LogLevel:  "debug",
		LogFile:   logFile,
		LogFormat: "json",
		LogToStd:  &toStd,
	}))
	t.Cleanup(Close)

	Debug("tail %s lines=%d", "/var/log/syslog", 5)
	WithFields(logrus.Fields{"route": "/logs"}).Info("served")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tail /var/log/syslog lines=5"`)
	assert.Contains(t, string(data), `"route":"/logs"`)
}

func TestSetLogLevel(t *testing.T) {
	require.NoError(t, InitLogger(&models.Config{LogLevel: "info"}))
	t.Cleanup(Close)

	assert.Equal(t, logrus.InfoLevel, GetLogger().GetLevel())
	SetLogLevel("warn")
	assert.Equal(t, logrus.WarnLevel, GetLogger().GetLevel())
	SetLogLevel("bogus")
	assert.Equal(t, logrus.InfoLevel, GetLogger().GetLevel())
}
