package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

func TestConfigurePersistentLogging(t *testing.T) {
	out := logrus.StandardLogger().Out
	t.Cleanup(func() {
		logrus.SetOutput(out)
	})

	logFile := filepath.Join(t.TempDir(), "forkchoice.log")
	require.NoError(t, ConfigurePersistentLogging(logFile))
	logrus.Info("Written to disk")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, true, strings.Contains(string(content), "Written to disk"))
}

func TestConfigurePersistentLogging_MissingDirectory(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "missing", "forkchoice.log")
	require.NotNil(t, ConfigurePersistentLogging(logFile))
}

func TestSetFormatter(t *testing.T) {
	formatter := logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetFormatter(formatter)
	})

	require.NoError(t, SetFormatter("text", true))
	f, ok := logrus.StandardLogger().Formatter.(*prefixed.TextFormatter)
	require.Equal(t, true, ok)
	assert.Equal(t, true, f.DisableColors)
	assert.Equal(t, true, f.FullTimestamp)

	require.NoError(t, SetFormatter("json", false))
	_, ok = logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
	assert.Equal(t, true, ok)

	require.ErrorContains(t, "unknown log format", SetFormatter("fluentd", false))
}
