package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testGRFPath returns path to a real client GRF if one is checked out.
func testGRFPath() string {
	paths := []string{
		"../../data/rdata.grf",
		"../../data/data.grf",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func writeTestArchive(t *testing.T, files map[string][]byte) string {
	t.Helper()

	var buf bytes.Buffer
	if err := Write(&buf, files); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.grf")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return path
}

func TestOpenAndRead(t *testing.T) {
	files := map[string][]byte{
		"data/prontera.gat":          bytes.Repeat([]byte("GRAT"), 64),
		"data/유저인터페이스/readme.txt": []byte("hello"),
		"data/empty.gat":             {},
	}
	path := writeTestArchive(t, files)

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer archive.Close()

	if archive.Version() != 0x200 {
		t.Errorf("expected version 0x200, got 0x%x", archive.Version())
	}
	if archive.Len() != 3 {
		t.Fatalf("expected 3 files, got %d", archive.Len())
	}

	for name, want := range files {
		got, err := archive.Read(name)
		if err != nil {
			t.Fatalf("Read(%s) failed: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Read(%s) returned %d bytes, want %d", name, len(got), len(want))
		}
	}
}

func TestList(t *testing.T) {
	path := writeTestArchive(t, map[string][]byte{
		"data/b.gat": []byte("b"),
		"data/a.gat": []byte("a"),
		"data/c.rsw": []byte("c"),
	})

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer archive.Close()

	all := archive.List()
	if strings.Join(all, ",") != "data/a.gat,data/b.gat,data/c.rsw" {
		t.Errorf("List() = %v", all)
	}

	gats := archive.ListExt(".GAT")
	if strings.Join(gats, ",") != "data/a.gat,data/b.gat" {
		t.Errorf("ListExt() = %v", gats)
	}
}

func TestContains(t *testing.T) {
	path := writeTestArchive(t, map[string][]byte{"data/Prontera.gat": []byte("x")})

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer archive.Close()

	for _, name := range []string{"data/prontera.gat", "DATA\\PRONTERA.GAT"} {
		if !archive.Contains(name) {
			t.Errorf("Contains(%q) returned false", name)
		}
	}
	if archive.Contains("nonexistent/file/path.txt") {
		t.Error("Contains returned true for non-existent file")
	}

	if _, err := archive.Read("missing.gat"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	valid, err := os.ReadFile(writeTestArchive(t, map[string][]byte{"a.gat": []byte("a")}))
	if err != nil {
		t.Fatal(err)
	}

	badMagic := bytes.Clone(valid)
	copy(badMagic, "Master of Mogic")

	badVersion := bytes.Clone(valid)
	badVersion[42] = 0x03

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"Magic", badMagic, ErrInvalidMagic},
		{"Version", badVersion, ErrUnsupportedVersion},
		{"Table", valid[:len(valid)-4], ErrCorruptTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.grf")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Open(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Open() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.grf")); err == nil {
		t.Error("expected error for missing file")
	}
}

// rawArchive lays out an archive with a hand-written file table, so
// entry sizes can disagree with the data.
func rawArchive(t *testing.T, body []byte, entries []Entry) string {
	t.Helper()

	var table bytes.Buffer
	for _, e := range entries {
		table.WriteString(e.Name)
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, e.CompressedSize)
		binary.Write(&table, binary.LittleEndian, e.AlignedSize)
		binary.Write(&table, binary.LittleEndian, e.UncompressedSize)
		table.WriteByte(e.Flags)
		binary.Write(&table, binary.LittleEndian, e.Offset)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(table.Bytes())
	zw.Close()

	header := Header{
		TableOffset: uint32(len(body)),
		FileCount:   uint32(len(entries) + 7),
		Version:     0x200,
	}
	copy(header.Magic[:], grfMagic)

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, &header)
	out.Write(body)
	binary.Write(&out, binary.LittleEndian, uint32(compressed.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(compressed.Bytes())

	path := filepath.Join(t.TempDir(), "raw.grf")
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return path
}

func TestRead_CorruptEntries(t *testing.T) {
	body := bytes.Repeat([]byte{0xAB}, 64)

	tests := []struct {
		name  string
		entry Entry
	}{
		{"StoredLargerThanAligned", Entry{CompressedSize: 64, AlignedSize: 8, UncompressedSize: 64}},
		{"CompressedLargerThanAligned", Entry{CompressedSize: 32, AlignedSize: 16, UncompressedSize: 100}},
		{"PastEndOfFile", Entry{CompressedSize: 8, AlignedSize: 1 << 30, UncompressedSize: 8}},
		{"OffsetPastEnd", Entry{CompressedSize: 8, AlignedSize: 8, UncompressedSize: 8, Offset: 1000}},
		{"InflateRatio", Entry{CompressedSize: 8, AlignedSize: 8, UncompressedSize: 0xFFFFFFFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := tt.entry
			entry.Name = "a.gat"
			entry.Flags = flagFile

			archive, err := Open(rawArchive(t, body, []Entry{entry}))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer archive.Close()

			if _, err := archive.Read("a.gat"); !errors.Is(err, ErrCorruptTable) {
				t.Errorf("Read() error = %v, want %v", err, ErrCorruptTable)
			}
		})
	}
}

func TestOpen_OversizedTable(t *testing.T) {
	valid, err := os.ReadFile(writeTestArchive(t, map[string][]byte{"a.gat": []byte("a")}))
	if err != nil {
		t.Fatal(err)
	}

	tableStart := int(binary.LittleEndian.Uint32(valid[30:])) + 46

	tests := []struct {
		name string
		at   int
		size uint32
	}{
		{"CompressedSize", tableStart, 0xFFFFFFF0},
		{"UncompressedSize", tableStart + 4, 0xFFFFFFF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Clone(valid)
			binary.LittleEndian.PutUint32(data[tt.at:], tt.size)

			path := filepath.Join(t.TempDir(), "big.grf")
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Open(path); !errors.Is(err, ErrCorruptTable) {
				t.Errorf("Open() error = %v, want %v", err, ErrCorruptTable)
			}
		})
	}
}

func TestOpen_ClientArchive(t *testing.T) {
	path := testGRFPath()
	if path == "" {
		t.Skip("No GRF file available for testing")
	}

	archive, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	gats := archive.ListExt(".gat")
	t.Logf("Opened: %s (%d files, %d GAT)", path, archive.Len(), len(gats))
	if len(gats) == 0 {
		t.Skip("No .gat files found")
	}

	entry, err := archive.Stat(gats[0])
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	data, err := archive.Read(gats[0])
	if err != nil {
		t.Fatalf("failed to read %s: %v", gats[0], err)
	}
	if len(data) != int(entry.UncompressedSize) {
		t.Errorf("size mismatch: got %d, expected %d", len(data), entry.UncompressedSize)
	}
	if !strings.HasPrefix(string(data), "GRAT") {
		t.Error("invalid GAT magic")
	}
}
