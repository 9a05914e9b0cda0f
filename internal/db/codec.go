package db

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/marcus/folio/pkg/editor"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	zenc, _ = zstd.NewWriter(nil)
	zdec, _ = zstd.NewReader(nil)
)

// EncodeDocument serializes the blocks of doc as zstd-compressed msgpack
func EncodeDocument(doc *editor.Document) ([]byte, error) {
	raw, err := msgpack.Marshal(doc.Blocks)
	if err != nil {
		return nil, fmt.Errorf("encode blocks: %w", err)
	}
	return zenc.EncodeAll(raw, nil), nil
}

// DecodeDocument reverses EncodeDocument. Block IDs are reassigned.
func DecodeDocument(data []byte) (*editor.Document, error) {
	raw, err := zdec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var blocks []editor.Block
	if err := msgpack.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	return editor.NewDocument(blocks...), nil
}
