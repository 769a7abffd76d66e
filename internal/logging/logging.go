package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RunLogger 一次批处理的日志：控制台 INFO 文本 + run_<id>.jsonl 全量 JSON
type RunLogger struct {
	*logrus.Logger
	RunID   string
	LogDir  string
	LogPath string
	file    *os.File
}

// NewRunLogger 创建运行日志，logDir 不存在时自动创建
func NewRunLogger(logDir, runID string, console io.Writer) (*RunLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if console == nil {
		console = os.Stdout
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("run_%s.jsonl", runID))
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", logPath, err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	logger.AddHook(&writerHook{
		w:         console,
		formatter: &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"},
		levels:    levelsFrom(logrus.InfoLevel),
	})
	logger.AddHook(&writerHook{
		w:         f,
		formatter: &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano},
		levels:    logrus.AllLevels,
	})

	return &RunLogger{
		Logger:  logger,
		RunID:   runID,
		LogDir:  logDir,
		LogPath: logPath,
		file:    f,
	}, nil
}

// Entry 携带 run_id 字段的日志入口
func (l *RunLogger) Entry() *logrus.Entry {
	return l.WithField("run_id", l.RunID)
}

// Close 关闭日志文件
func (l *RunLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// SaveSummary 写入 summary_<id>.json，附带 run_id 和时间戳
func SaveSummary(logDir, runID string, summary interface{}) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("summary must be an object: %w", err)
	}
	doc["run_id"] = runID
	doc["timestamp"] = time.Now().Format(time.RFC3339)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(logDir, fmt.Sprintf("summary_%s.json", runID))
	if err := os.WriteFile(path, out, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// writerHook 按级别把日志写到指定 writer
type writerHook struct {
	mu        sync.Mutex
	w         io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Levels() []logrus.Level { return h.levels }

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}

// levelsFrom 指定级别及更严重的级别
func levelsFrom(lowest logrus.Level) []logrus.Level {
	var out []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= lowest {
			out = append(out, l)
		}
	}
	return out
}
