// 本文件用于从文件末尾反向分块读取最后 N 行
package tail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// DefaultChunkSize 为单次反向读取的块大小
const DefaultChunkSize = 8192

var (
	// ErrNotFound 表示路径不存在或不是普通文件
	ErrNotFound = errors.New("log file not found")
	// ErrPermissionDenied 表示文件存在但无法读取
	ErrPermissionDenied = errors.New("permission denied")
)

// Request 描述一次读取请求
type Request struct {
	Path  string
	Lines int
}

// Result 为读取结果，Lines 按文件中的先后顺序排列
type Result struct {
	SourcePath string   `json:"file"`
	Lines      []string `json:"lines"`

	BytesScanned int64 `json:"-"`
}

// Options 用于配置读取器
type Options struct {
	ChunkSize int
	Encoding  string
}

// Reader 负责读取文件尾部若干行，不持有任何跨调用状态，可并发使用
type Reader struct {
	chunkSize int
	decoder   LossyDecoder
}

// NewReader 创建尾部读取器，编码名称无法识别时返回错误
func NewReader(opts Options) (*Reader, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	decoder, err := NewLossyDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Reader{chunkSize: chunkSize, decoder: decoder}, nil
}

// Do 执行 Request
func (r *Reader) Do(req Request) (Result, error) {
	return r.Tail(req.Path, req.Lines)
}

// Tail 返回 path 的最后 n 行；n <= 0 时返回空结果
func (r *Reader) Tail(path string, n int) (Result, error) {
	sourcePath := canonicalPath(path)
	result := Result{SourcePath: sourcePath, Lines: []string{}}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return result, classify(sourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return result, fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
	}
	if n <= 0 {
		return result, nil
	}

	file, err := os.Open(sourcePath)
	if err != nil {
		return result, classify(sourcePath, err)
	}
	defer file.Close()

	// 以打开后的句柄为准获取大小，避免 stat 与 open 之间文件被替换
	info, err = file.Stat()
	if err != nil {
		return result, classify(sourcePath, err)
	}
	size := info.Size()
	if size == 0 {
		return result, nil
	}

	data, err := r.scanBackward(file, size, n)
	if err != nil {
		return result, fmt.Errorf("读取文件失败: %s: %w", sourcePath, err)
	}
	result.BytesScanned = int64(len(data))

	raw := splitLines(data)
	if len(raw) > n {
		raw = raw[len(raw)-n:]
	}
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, r.decoder.Decode(line))
	}
	result.Lines = lines
	return result, nil
}

// scanBackward 从 size 处向前逐块读取，直到换行数超过 n 或读到文件头
// 多读的一行用于丢弃块起点处可能被截断的首个片段
func (r *Reader) scanBackward(src io.ReaderAt, size int64, n int) ([]byte, error) {
	cursor := size
	newlines := 0
	var chunks [][]byte
	total := 0
	for cursor > 0 && newlines <= n {
		jump := min(cursor, int64(r.chunkSize))
		cursor -= jump
		chunk := make([]byte, jump)
		read, err := src.ReadAt(chunk, cursor)
		if err != nil && !(errors.Is(err, io.EOF) && int64(read) == jump) {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("文件在读取过程中被截断: offset %d", cursor)
			}
			return nil, err
		}
		newlines += bytes.Count(chunk, []byte{'\n'})
		chunks = append(chunks, chunk)
		total += len(chunk)
	}

	data := make([]byte, 0, total)
	for i := len(chunks) - 1; i >= 0; i-- {
		data = append(data, chunks[i]...)
	}
	return data, nil
}

// splitLines 按 \n、\r\n 与单独的 \r 切分，末尾的换行符不产生空行
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			lines = append(lines, data[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, data[start:i])
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

func canonicalPath(path string) string {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return cleaned
	}
	return abs
}

// classify 将系统错误归类为 ErrNotFound 或 ErrPermissionDenied
func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.ELOOP):
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("访问文件失败: %s: %w", path, err)
	}
}
