package logger

import (
	"fmt"
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotationWriter 创建带轮换的文件 writer
// size 使用 lumberjack，time 使用 file-rotatelogs 并在 outputPath 处保留软链接
func NewRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	if cfg.Type != RotationByTime {
		return &lumberjack.Logger{
			Filename:   outputPath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}, nil
	}

	every := parseDurationOr(cfg.RotationTime, 24*time.Hour)
	keep := parseDurationOr(cfg.MaxAgeTime, 7*24*time.Hour)
	pattern := cfg.RotationPattern
	if pattern == "" {
		pattern = ".%Y%m%d"
	}

	w, err := rotatelogs.New(
		outputPath+pattern,
		rotatelogs.WithLinkName(outputPath),
		rotatelogs.WithRotationTime(every),
		rotatelogs.WithMaxAge(keep),
	)
	if err != nil {
		return nil, fmt.Errorf("rotatelogs: %w", err)
	}
	return w, nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
