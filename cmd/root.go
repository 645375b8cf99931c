package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sys-monitor/internal/config"
	"sys-monitor/internal/models"
)

const defaultConfigPath = "config.yaml"

type rootOptions struct {
	configPath string
	addr       string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "sys-monitor",
		Short:         "主机资源监控与日志尾部查询服务",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "配置文件路径")
	rootCmd.Flags().StringVar(&opts.addr, "addr", "", "覆盖 api_bind 监听地址")

	rootCmd.AddCommand(newTailCommand(opts))
	return rootCmd
}

// loadConfig 读取配置；使用默认路径且文件不存在时退回内置默认值
// 返回的 path 为空表示没有可监听的配置文件
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*models.Config, string, error) {
	path := strings.TrimSpace(opts.configPath)
	explicit := cmd.Flags().Changed("config")
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			cfg, err := config.Default()
			return cfg, "", err
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
