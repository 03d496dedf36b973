package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader, err := NewLoader("")
	be.Err(t, err, nil)
	be.Equal(t, loader.Encoding(), EncodingUTF8)

	_, err = NewLoader("ebcdic")
	be.Err(t, err, "unsupported encoding: ebcdic")
}

func TestLoadScript_UTF8(t *testing.T) {
	tmpDir := t.TempDir()
	content := "int x = 5\n\n// comment only\nx + 1 /* trailing */\r\n"
	path := writeFile(t, tmpDir, "test.heap", []byte(content))

	loader, _ := NewLoader(EncodingUTF8)
	s, err := loader.LoadScript(path)
	be.Err(t, err, nil)

	be.Equal(t, s.FileName, "test.heap")
	be.Equal(t, s.Size, int64(len(content)))
	be.Equal(t, len(s.Statements), 2)
	be.Equal(t, s.Statements[0].Number, 1)
	be.Equal(t, s.Statements[0].Text, "int x = 5")
	be.Equal(t, s.Statements[1].Number, 4)
	be.Equal(t, s.Statements[1].Text, "x + 1 /* trailing */")
}

func TestLoadScript_BOM(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "bom.heap", []byte("\xef\xbb\xbfint x"))

	loader, _ := NewLoader(EncodingUTF8)
	s, err := loader.LoadScript(path)
	be.Err(t, err, nil)
	be.Equal(t, s.Content, "int x")
}

func TestLoadScript_ShiftJIS(t *testing.T) {
	// Shift-JISでエンコードされたテストファイルを作成
	original := "string s = \"こんにちは\""
	encoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(original))
	if err != nil {
		t.Fatalf("failed to encode Shift-JIS: %v", err)
	}

	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "sjis.heap", encoded)

	loader, _ := NewLoader(EncodingShiftJIS)
	s, err := loader.LoadScript(path)
	be.Err(t, err, nil)
	be.Equal(t, s.Content, original)
	be.Equal(t, s.Size, int64(len(encoded)))
}

func TestLoadScript_Latin1(t *testing.T) {
	original := "char c = 'é'"
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(original))
	if err != nil {
		t.Fatalf("failed to encode Latin-1: %v", err)
	}

	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "latin1.heap", encoded)

	loader, _ := NewLoader(EncodingLatin1)
	s, err := loader.LoadScript(path)
	be.Err(t, err, nil)
	be.Equal(t, s.Content, original)
}

func TestLoadScript_Missing(t *testing.T) {
	loader, _ := NewLoader("")
	_, err := loader.LoadScript(filepath.Join(t.TempDir(), "missing.heap"))
	be.Err(t, err, "failed to read script")
}

func TestLoad_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "b.heap", []byte("int b"))
	writeFile(t, tmpDir, "A.HEAP", []byte("int a"))
	writeFile(t, tmpDir, "notes.txt", []byte("ignored"))
	if err := os.Mkdir(filepath.Join(tmpDir, "sub.heap"), 0755); err != nil {
		t.Fatal(err)
	}

	loader, _ := NewLoader("")
	scripts, err := loader.Load(tmpDir)
	be.Err(t, err, nil)
	be.Equal(t, len(scripts), 2)
	be.Equal(t, scripts[0].FileName, "A.HEAP")
	be.Equal(t, scripts[1].FileName, "b.heap")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	loader, _ := NewLoader("")
	_, err := loader.Load(t.TempDir())
	be.Err(t, err, "no script files found")
}

func TestLoad_File(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "one.txt", []byte("reset()"))

	loader, _ := NewLoader("")
	scripts, err := loader.Load(path)
	be.Err(t, err, nil)
	be.Equal(t, len(scripts), 1)
	be.Equal(t, scripts[0].Statements[0].Text, "reset()")
}

func TestDecode_Aliases(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf8", "SJIS", "ISO-8859-1"} {
		_, err := Decode([]byte("x"), name)
		be.Err(t, err, nil)
	}
}
