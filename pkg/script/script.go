// Package script loads heaplab script files: one statement per line, in a
// configurable text encoding.
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zurustar/heaplab/pkg/compiler"
)

// Extension is the file extension of heaplab scripts.
const Extension = ".heap"

// サポートするエンコーディング
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
	EncodingLatin1   = "latin1"
)

// Encodings returns the supported encoding names.
func Encodings() []string {
	return []string{EncodingUTF8, EncodingShiftJIS, EncodingLatin1}
}

// Script はスクリプトファイルを表す
type Script struct {
	FileName   string          // ファイル名
	Content    string          // UTF-8に変換された内容
	Size       int64           // ファイルサイズ
	Statements []compiler.Line // 空行とコメント行を除いた文
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	encoding string
}

// NewLoader Loaderを作成
func NewLoader(encoding string) (*Loader, error) {
	if encoding == "" {
		encoding = EncodingUTF8
	}
	if _, err := lookupEncoding(encoding); err != nil {
		return nil, err
	}
	return &Loader{encoding: encoding}, nil
}

// Encoding returns the encoding the loader decodes with.
func (l *Loader) Encoding() string {
	return l.encoding
}

// Load reads a script file, or every script file of a directory in name
// order.
func (l *Loader) Load(path string) ([]Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		s, err := l.LoadScript(path)
		if err != nil {
			return nil, err
		}
		return []Script{*s}, nil
	}

	scriptFiles, err := findScriptFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}
	if len(scriptFiles) == 0 {
		return nil, fmt.Errorf("no script files found in %s", path)
	}

	var scripts []Script
	for _, filePath := range scriptFiles {
		s, err := l.LoadScript(filePath)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, *s)
	}
	return scripts, nil
}

// findScriptFiles .heapファイルを検出（case-insensitive、サブディレクトリは見ない）
func findScriptFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var scriptFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			scriptFiles = append(scriptFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(scriptFiles)
	return scriptFiles, nil
}

// LoadScript 単一のスクリプトファイルを読み込む
func (l *Loader) LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}

	s, err := l.Parse(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes raw script bytes and splits them into statements.
func (l *Loader) Parse(name string, data []byte) (*Script, error) {
	content, err := Decode(data, l.encoding)
	if err != nil {
		return nil, err
	}
	return &Script{
		FileName:   name,
		Content:    content,
		Size:       int64(len(data)),
		Statements: compiler.SplitStatements(content),
	}, nil
}

// Decode converts data in the named encoding to UTF-8. A leading UTF-8 byte
// order mark is dropped.
func Decode(data []byte, name string) (string, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
	}

	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return string(utf8Data), nil
}

// lookupEncoding returns nil for UTF-8, which needs no transform.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case EncodingUTF8, "utf8":
		return nil, nil
	case EncodingShiftJIS, "sjis":
		return japanese.ShiftJIS, nil
	case EncodingLatin1, "iso-8859-1":
		return charmap.ISO8859_1, nil
	}
	return nil, fmt.Errorf("unsupported encoding: %s (must be %s)", name, strings.Join(Encodings(), ", "))
}
