// 本文件用于路径工具的单元测试
package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 覆盖符号链接逃逸与目录范围判断
func TestRelativePath_PreventsSymlinkEscape(t *testing.T) {
	baseDir := t.TempDir()
	outsideDir := t.TempDir()

	escapeLink := filepath.Join(baseDir, "escape")
	if err := os.Symlink(outsideDir, escapeLink); err != nil {
		skipIfSymlinkNotSupported(t, err)
		return
	}

	outsideFile := filepath.Join(outsideDir, "out.txt")
	if err := os.WriteFile(outsideFile, []byte("data"), 0o644); err != nil {
		t.Fatalf("写入外部文件失败: %v", err)
	}

	_, err := RelativePath(baseDir, filepath.Join(escapeLink, "out.txt"))
	if err == nil || !errors.Is(err, ErrOutsideBaseDir) {
		t.Fatalf("期望返回外部目录错误，实际: %v", err)
	}
}

func TestRelativePath_AllowsSymlinkInside(t *testing.T) {
	baseDir := t.TempDir()
	realDir := filepath.Join(baseDir, "real")
	if err := os.MkdirAll(realDir, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	linkDir := filepath.Join(baseDir, "link")
	if err := os.Symlink(realDir, linkDir); err != nil {
		skipIfSymlinkNotSupported(t, err)
		return
	}

	targetFile := filepath.Join(realDir, "file.txt")
	if err := os.WriteFile(targetFile, []byte("data"), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	rel, err := RelativePath(baseDir, filepath.Join(linkDir, "file.txt"))
	if err != nil {
		t.Fatalf("意外错误: %v", err)
	}
	if rel != "real/file.txt" {
		t.Fatalf("相对路径不符合预期，实际 %q", rel)
	}
}

func TestRelativePath_AllowsNonExistentFile(t *testing.T) {
	baseDir := t.TempDir()
	newDir := filepath.Join(baseDir, "new")
	if err := os.MkdirAll(newDir, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	filePath := filepath.Join(newDir, "file.txt")

	rel, err := RelativePath(baseDir, filePath)
	if err != nil {
		t.Fatalf("相对路径计算失败: %v", err)
	}
	if rel != "new/file.txt" {
		t.Fatalf("相对路径不符合预期，实际 %q", rel)
	}
}

func TestRelativePath_RejectsSiblingPrefix(t *testing.T) {
	parent := t.TempDir()
	baseDir := filepath.Join(parent, "log")
	siblingDir := filepath.Join(parent, "logs-other")
	for _, dir := range []string{baseDir, siblingDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("创建目录失败: %v", err)
		}
	}

	_, err := RelativePath(baseDir, filepath.Join(siblingDir, "app.log"))
	if !errors.Is(err, ErrOutsideBaseDir) {
		t.Fatalf("期望返回外部目录错误，实际: %v", err)
	}
}

func TestWithinAny(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	outside := t.TempDir()

	if err := WithinAny(nil, filepath.Join(outside, "x.log")); err != nil {
		t.Fatalf("未配置目录时不应限制: %v", err)
	}
	if err := WithinAny([]string{rootA, rootB}, filepath.Join(rootB, "x.log")); err != nil {
		t.Fatalf("位于允许目录下却被拒绝: %v", err)
	}
	err := WithinAny([]string{rootA, rootB}, filepath.Join(outside, "x.log"))
	if !errors.Is(err, ErrOutsideBaseDir) {
		t.Fatalf("期望返回外部目录错误，实际: %v", err)
	}
	err = WithinAny([]string{filepath.Join(outside, "missing", "deeper")}, filepath.Join(outside, "x.log"))
	if !errors.Is(err, ErrOutsideBaseDir) {
		t.Fatalf("无法解析的目录应视为不允许，实际: %v", err)
	}
}

func skipIfSymlinkNotSupported(t *testing.T, err error) {
	t.Helper()
	if os.IsPermission(err) || strings.Contains(strings.ToLower(err.Error()), "privilege") {
		t.Skipf("当前环境不支持符号链接: %v", err)
	}
}
