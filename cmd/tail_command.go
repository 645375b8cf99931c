package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sys-monitor/internal/tail"
)

func newTailCommand(opts *rootOptions) *cobra.Command {
	var lines int
	var encoding string

	cmd := &cobra.Command{
		Use:   "tail <file>",
		Short: "输出文件最后 N 行",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("encoding") {
				encoding = cfg.LogsEncoding
			}
			reader, err := tail.NewReader(tail.Options{ChunkSize: cfg.LogsChunkSize, Encoding: encoding})
			if err != nil {
				return err
			}
			result, err := reader.Do(tail.Request{Path: args[0], Lines: lines})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "输出的行数")
	cmd.Flags().StringVar(&encoding, "encoding", "", "文件编码（WHATWG 标签，如 utf-8、gbk），默认取 logs_encoding")
	return cmd
}
