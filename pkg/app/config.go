package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/recordhub/pkg/config"
	"github.com/spf13/pflag"
)

// EnvPrefix 环境变量前缀，RECORDHUB_WEB_PORT 覆盖 web.port
const EnvPrefix = "RECORDHUB"

// LoadConfig 解析命令行并加载配置到 target
// 优先级：命令行 > 环境变量 > 配置文件 > target 中预置的默认值
// 未显式指定配置文件且默认路径不存在时仅使用默认值
func LoadConfig(target any, args []string, opts ...config.Option) (config.Manager, error) {
	execDir, err := GetExecDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable directory: %w", err)
	}

	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	path := fs.StringP("config", "c", filepath.Join(execDir, "config.yaml"), "path to config file")
	level := fs.String("log.level", "", "override log level")
	port := fs.Int("web.port", 0, "override http listen port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	explicit := fs.Changed("config")
	if !explicit {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			*path = env
			explicit = true
		}
	}

	mgr := config.NewManager(append(opts, config.WithEnvPrefix(EnvPrefix))...)

	if _, statErr := os.Stat(*path); statErr == nil {
		if err := mgr.LoadFile(*path); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigFileNotFound, *path)
	}

	if fs.Changed("log.level") {
		mgr.Set("log.level", strings.ToLower(*level))
	}
	if fs.Changed("web.port") {
		mgr.Set("web.port", *port)
	}

	if err := mgr.Unmarshal(target); err != nil {
		return nil, err
	}
	return mgr, nil
}

// GetExecDir 可执行文件所在目录，解析符号链接
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return filepath.Dir(execPath), nil
}
