package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/Faultbox/heightfield/pkg/encoding"
)

// Write packs files into a version 0x200 GRF archive. Names are stored
// EUC-KR encoded with backslash separators, as the RO client expects.
func Write(w io.Writer, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var body, table bytes.Buffer
	for _, name := range names {
		compressed, err := deflate(files[name])
		if err != nil {
			return fmt.Errorf("compressing %s: %w", name, err)
		}
		// Equal sizes mark an entry as stored uncompressed.
		if len(compressed) == len(files[name]) {
			compressed = files[name]
		}

		offset := uint32(body.Len())
		aligned := (len(compressed) + 7) &^ 7
		body.Write(compressed)
		body.Write(make([]byte, aligned-len(compressed)))

		stored := bytes.ReplaceAll(encoding.UTF8ToEUCKR(name), []byte("/"), []byte("\\"))
		table.Write(stored)
		table.WriteByte(0)
		_ = binary.Write(&table, binary.LittleEndian, uint32(len(compressed)))
		_ = binary.Write(&table, binary.LittleEndian, uint32(aligned))
		_ = binary.Write(&table, binary.LittleEndian, uint32(len(files[name])))
		table.WriteByte(flagFile)
		_ = binary.Write(&table, binary.LittleEndian, offset)
	}

	compressedTable, err := deflate(table.Bytes())
	if err != nil {
		return fmt.Errorf("compressing file table: %w", err)
	}

	header := Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(names) + 7),
		Version:     grfVersion,
	}
	copy(header.Magic[:], grfMagic)

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, &header)
	out.Write(body.Bytes())
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(compressedTable)))
	_ = binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(compressedTable)

	_, err = w.Write(out.Bytes())
	return err
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
