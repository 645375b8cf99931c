// 本文件用于路径规范化与日志目录访问范围校验
package pathutil

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrOutsideBaseDir 表示 fullPath 未落在 baseDir 下的错误
var ErrOutsideBaseDir = errors.New("文件路径不在允许的目录下")

// RelativePath 返回从 baseDir 到 fullPath 的相对路径，使用 / 分隔
func RelativePath(baseDir, fullPath string) (string, error) {
	base, err := ResolvePath(baseDir)
	if err != nil {
		return "", fmt.Errorf("解析基准目录失败: %w", err)
	}
	full, err := ResolvePath(fullPath)
	if err != nil {
		return "", fmt.Errorf("解析文件路径失败: %w", err)
	}

	rel, err := filepath.Rel(base, full)
	if err != nil {
		return "", fmt.Errorf("计算相对路径失败: %w", err)
	}
	// 如果 fullPath 不在 baseDir 下则报错
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBaseDir, fullPath)
	}

	return filepath.ToSlash(rel), nil
}

// WithinAny 判断 fullPath 是否落在 roots 中任一目录下，roots 为空时不做限制
// 符号链接解析后再比较，防止通过链接逃逸
func WithinAny(roots []string, fullPath string) error {
	if len(roots) == 0 {
		return nil
	}
	var lastErr error
	for _, root := range roots {
		_, err := RelativePath(root, fullPath)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if errors.Is(lastErr, ErrOutsideBaseDir) {
		return lastErr
	}
	return fmt.Errorf("%w: %s", ErrOutsideBaseDir, fullPath)
}

// ResolvePath 返回绝对路径，并解析路径中的符号链接；最后一级不存在时仅解析父目录
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("路径为空")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// 最后一级不存在时解析父目录后再拼接，由调用方决定是否按不存在处理
		if errors.Is(err, fs.ErrNotExist) {
			parent := filepath.Dir(abs)
			parentResolved, dirErr := filepath.EvalSymlinks(parent)
			if dirErr != nil {
				return "", err
			}
			return filepath.Join(parentResolved, filepath.Base(abs)), nil
		}
		return "", err
	}
	return resolved, nil
}
