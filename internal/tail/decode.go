// 本文件用于将日志原始字节按容错策略解码为文本
package tail

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// ReplacementChar 为非法字节序列的替换字符
const ReplacementChar = "\uFFFD"

// LossyDecoder 将原始字节转换为合法的 UTF-8 文本，非法序列按 ReplacementChar 替换，不返回错误
type LossyDecoder interface {
	Decode(raw []byte) string
	Name() string
}

// unsplittableEncodings 为不兼容 ASCII 或带跨行状态的编码，先按字节切行再解码会得到错误文本
var unsplittableEncodings = map[string]struct{}{
	"utf-16le":    {},
	"utf-16be":    {},
	"iso-2022-jp": {},
	"replacement": {},
}

// ErrUnsupportedEncoding 表示编码无法识别，或与按 \n、\r 切行不兼容
var ErrUnsupportedEncoding = errors.New("不支持的文件编码")

type textDecoder struct {
	name string
	enc  encoding.Encoding
	utf8 bool
}

// NewLossyDecoder 按 WHATWG 编码标签创建解码器，空标签视为 utf-8
func NewLossyDecoder(label string) (LossyDecoder, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupportedEncoding, label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	if !splittable(label, name) {
		return nil, fmt.Errorf("%w %q: 仅支持兼容 ASCII 且无状态的编码", ErrUnsupportedEncoding, label)
	}
	return &textDecoder{name: name, enc: enc, utf8: enc == unicode.UTF8}, nil
}

func splittable(names ...string) bool {
	for _, name := range names {
		if _, bad := unsplittableEncodings[name]; bad {
			return false
		}
	}
	return true
}

func (d *textDecoder) Name() string {
	return d.name
}

// Decode 执行容错解码
func (d *textDecoder) Decode(raw []byte) string {
	if d.utf8 && utf8.Valid(raw) {
		return string(raw)
	}
	// Decoder 带内部状态，每次调用单独创建
	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), ReplacementChar)
	}
	if !utf8.Valid(out) {
		return strings.ToValidUTF8(string(out), ReplacementChar)
	}
	return string(out)
}
