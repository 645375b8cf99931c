// 本文件用于定义配置模型
package models

// Config 配置结构体
type Config struct {
	APIBind         string `yaml:"api_bind"` // API 服务监听地址
	APICORSOrigins  string `yaml:"api_cors_origins"`
	APIReadTimeout  string `yaml:"api_read_timeout"`
	APIWriteTimeout string `yaml:"api_write_timeout"`

	CPUSampleInterval string `yaml:"cpu_sample_interval"` // CPU 使用率采样间隔

	LogsDefaultFile  string `yaml:"logs_default_file"`
	LogsDefaultLines int    `yaml:"logs_default_lines"`
	LogsMaxLines     int    `yaml:"logs_max_lines"`
	LogsChunkSize    int    `yaml:"logs_chunk_size"` // 反向读取块大小（字节）
	LogsEncoding     string `yaml:"logs_encoding"`
	LogsAllowedDirs  string `yaml:"logs_allowed_dirs"` // 逗号分隔，为空表示不限制

	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	LogFormat     string `yaml:"log_format"`
	LogToStd      *bool  `yaml:"log_to_std"`
	LogShowCaller bool   `yaml:"log_show_caller"`
}
