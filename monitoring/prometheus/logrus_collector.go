package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const (
	prefixKey     = "prefix"
	defaultPrefix = "global"
)

var logEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "log_entries_total",
	Help: "Total number of log messages.",
}, []string{"level", "prefix"})

// LogrusCollector is a logrus hook counting log entries by level and by the
// package prefix of the logger.
type LogrusCollector struct {
	levels []logrus.Level
}

// NewLogrusCollector returns a hook counting info, warn and error entries,
// plus the extra levels given.
func NewLogrusCollector(extraLevels ...logrus.Level) *LogrusCollector {
	levels := append([]logrus.Level{logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}, extraLevels...)
	return &LogrusCollector{levels: levels}
}

// Fire is called on every log call.
func (c *LogrusCollector) Fire(entry *logrus.Entry) error {
	prefix := defaultPrefix
	if v, ok := entry.Data[prefixKey]; ok {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("prefix is a %T, not a string", v)
		}
		prefix = s
	}
	logEntries.WithLabelValues(entry.Level.String(), prefix).Inc()
	return nil
}

// Levels returns the levels counted by the hook.
func (c *LogrusCollector) Levels() []logrus.Level {
	return c.levels
}
