// Package grf reads Ragnarok Online GRF archives, the container that ships
// GAT height tables.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Faultbox/heightfield/pkg/encoding"
)

const (
	grfMagic      = "Master of Magic"
	grfHeaderSize = 46
	grfVersion    = 0x200

	entryHeaderSize = 17

	// Upper bound of the deflate expansion ratio.
	maxInflateRatio = 1032

	flagFile      = 0x01
	flagEncrypted = 0x02 | 0x04
)

// Archive errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrCorruptTable       = errors.New("corrupt GRF file table")
	ErrNotFound           = errors.New("file not found in GRF")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

// Archive represents an opened GRF archive.
type Archive struct {
	file    *os.File
	size    int64
	header  Header
	entries map[string]*Entry
}

// Header contains GRF file header information.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry represents a file entry in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Open opens a GRF archive for reading.
func Open(name string) (*Archive, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("opening file: %w", err)
	}

	archive := &Archive{
		file:    file,
		size:    info.Size(),
		entries: make(map[string]*Entry),
	}

	if err := archive.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if err := archive.readFileTable(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading file table: %w", err)
	}

	return archive, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Read(a.file, binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != grfVersion {
		return fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	tableStart := int64(a.header.TableOffset) + grfHeaderSize
	if _, err := a.file.Seek(tableStart, io.SeekStart); err != nil {
		return err
	}

	var sizes [2]uint32
	if err := binary.Read(a.file, binary.LittleEndian, &sizes); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}
	if int64(sizes[0]) > a.size-tableStart-8 {
		return fmt.Errorf("%w: table of %d bytes exceeds file size", ErrCorruptTable, sizes[0])
	}
	if !inflatable(sizes[0], sizes[1]) {
		return fmt.Errorf("%w: table inflates from %d to %d bytes", ErrCorruptTable, sizes[0], sizes[1])
	}

	compressed := make([]byte, sizes[0])
	if _, err := io.ReadFull(a.file, compressed); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}

	table, err := inflate(compressed, sizes[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}

	count := int64(a.header.FileCount) - int64(a.header.Seed) - 7
	if count < 0 {
		return fmt.Errorf("%w: negative file count", ErrCorruptTable)
	}

	offset := 0
	for i := int64(0); i < count; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 {
			return fmt.Errorf("%w: entry %d has no name terminator", ErrCorruptTable, i)
		}
		name := encoding.EUCKRToUTF8(table[offset : offset+nameEnd])
		offset += nameEnd + 1

		if offset+entryHeaderSize > len(table) {
			return fmt.Errorf("%w: entry %d truncated", ErrCorruptTable, i)
		}

		entry := &Entry{
			Name:             encoding.NormalizeGRFPath(name),
			CompressedSize:   binary.LittleEndian.Uint32(table[offset:]),
			AlignedSize:      binary.LittleEndian.Uint32(table[offset+4:]),
			UncompressedSize: binary.LittleEndian.Uint32(table[offset+8:]),
			Flags:            table[offset+12],
			Offset:           binary.LittleEndian.Uint32(table[offset+13:]),
		}
		offset += entryHeaderSize

		if entry.Flags&flagFile != 0 {
			a.entries[entry.Name] = entry
		}
	}

	return nil
}

// Version returns the archive format version.
func (a *Archive) Version() uint32 {
	return a.header.Version
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.entries)
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for p := range a.entries {
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}

// ListExt returns the sorted paths whose extension matches ext, e.g. ".gat".
func (a *Archive) ListExt(ext string) []string {
	ext = strings.ToLower(ext)
	var result []string
	for p := range a.entries {
		if path.Ext(p) == ext {
			result = append(result, p)
		}
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(name string) bool {
	_, ok := a.entries[encoding.NormalizeGRFPath(name)]
	return ok
}

// Stat returns the entry for a file.
func (a *Archive) Stat(name string) (*Entry, error) {
	entry, ok := a.entries[encoding.NormalizeGRFPath(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, nil
}

// Read reads a file from the archive.
func (a *Archive) Read(name string) ([]byte, error) {
	entry, err := a.Stat(name)
	if err != nil {
		return nil, err
	}
	if entry.Flags&flagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, name)
	}

	stored := entry.CompressedSize == entry.UncompressedSize
	switch {
	case entry.CompressedSize > entry.AlignedSize:
		return nil, fmt.Errorf("%w: %s compressed size exceeds aligned size", ErrCorruptTable, name)
	case stored && entry.UncompressedSize > entry.AlignedSize:
		return nil, fmt.Errorf("%w: %s size exceeds aligned size", ErrCorruptTable, name)
	case int64(entry.Offset)+grfHeaderSize+int64(entry.AlignedSize) > a.size:
		return nil, fmt.Errorf("%w: %s extends past end of file", ErrCorruptTable, name)
	case !stored && !inflatable(entry.CompressedSize, entry.UncompressedSize):
		return nil, fmt.Errorf("%w: %s inflates from %d to %d bytes", ErrCorruptTable, name, entry.CompressedSize, entry.UncompressedSize)
	}

	data := make([]byte, entry.AlignedSize)
	if _, err := a.file.ReadAt(data, int64(entry.Offset)+grfHeaderSize); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	if stored {
		return data[:entry.UncompressedSize], nil
	}

	out, err := inflate(data[:entry.CompressedSize], entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", name, err)
	}
	return out, nil
}

// inflatable reports whether compressed bytes of deflate data can expand
// to size bytes.
func inflatable(compressed, size uint32) bool {
	return uint64(size) <= uint64(compressed)*maxInflateRatio
}

func inflate(data []byte, size uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
