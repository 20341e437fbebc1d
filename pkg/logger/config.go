package logger

// Level 日志等级
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Format 输出格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// RotationType 文件轮换方式
type RotationType string

const (
	RotationBySize RotationType = "size"
	RotationByTime RotationType = "time"
)

// Config 日志配置
type Config struct {
	Level  Level  `mapstructure:"level" json:"level" yaml:"level"`
	Format Format `mapstructure:"format" json:"format" yaml:"format"`

	EnableConsole bool   `mapstructure:"enable_console" json:"enable_console" yaml:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file" json:"enable_file" yaml:"enable_file"`
	OutputPath    string `mapstructure:"output_path" json:"output_path" yaml:"output_path"`

	TimeFormat string         `mapstructure:"time_format" json:"time_format" yaml:"time_format"`
	Rotation   RotationConfig `mapstructure:"rotation" json:"rotation" yaml:"rotation"`

	// 达到该等级时附带堆栈
	StacktraceLevel Level `mapstructure:"stacktrace_level" json:"stacktrace_level" yaml:"stacktrace_level"`

	// 每秒前 SamplingInitial 条全部记录，之后每 SamplingThereafter 条记录 1 条
	EnableSampling     bool `mapstructure:"enable_sampling" json:"enable_sampling" yaml:"enable_sampling"`
	SamplingInitial    int  `mapstructure:"sampling_initial" json:"sampling_initial" yaml:"sampling_initial"`
	SamplingThereafter int  `mapstructure:"sampling_thereafter" json:"sampling_thereafter" yaml:"sampling_thereafter"`

	Development bool `mapstructure:"development" json:"development" yaml:"development"`

	// 写入字段值前替换为 ***，如 password
	SensitiveKeys []string `mapstructure:"sensitive_keys" json:"sensitive_keys" yaml:"sensitive_keys"`

	GlobalFields map[string]any `mapstructure:"global_fields" json:"global_fields" yaml:"global_fields"`
}

// RotationConfig 轮换配置
type RotationConfig struct {
	Type RotationType `mapstructure:"type" json:"type" yaml:"type"`

	// 按大小轮换 (lumberjack)，单位 MB / 个 / 天
	MaxSize    int  `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress   bool `mapstructure:"compress" json:"compress" yaml:"compress"`

	// 按时间轮换 (file-rotatelogs)
	RotationTime    string `mapstructure:"rotation_time" json:"rotation_time" yaml:"rotation_time"`
	MaxAgeTime      string `mapstructure:"max_age_time" json:"max_age_time" yaml:"max_age_time"`
	RotationPattern string `mapstructure:"rotation_pattern" json:"rotation_pattern" yaml:"rotation_pattern"`
}

// DefaultConfig 默认配置：info 等级，仅控制台输出
func DefaultConfig() *Config {
	return &Config{
		Level:         InfoLevel,
		Format:        ConsoleFormat,
		EnableConsole: true,
		TimeFormat:    "2006-01-02 15:04:05",
		Rotation: RotationConfig{
			Type:            RotationBySize,
			MaxSize:         100,
			MaxBackups:      5,
			MaxAge:          7,
			Compress:        true,
			RotationTime:    "24h",
			MaxAgeTime:      "168h",
			RotationPattern: ".%Y%m%d",
		},
		StacktraceLevel:    ErrorLevel,
		SamplingInitial:    100,
		SamplingThereafter: 100,
		SensitiveKeys:      []string{"password"},
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.EnableFile && c.OutputPath == "" {
		return ErrInvalidOutputPath
	}
	if !c.EnableConsole && !c.EnableFile {
		return ErrNoOutputEnabled
	}
	if _, ok := parseLevel(c.Level); !ok {
		return ErrInvalidLevel
	}
	return nil
}
