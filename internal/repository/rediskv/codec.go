package rediskv

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
)

func encodeEntry(e entry.Entry) ([]byte, error) {
	b, err := msgpack.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entry %s: %w", e.ID, err)
	}
	return b, nil
}

func decodeEntry(b []byte) (entry.Entry, error) {
	var e entry.Entry
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return entry.Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}

func encodeDictInfo(d entry.DictInfo) ([]byte, error) {
	b, err := msgpack.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode dictInfo %s: %w", d.ID, err)
	}
	return b, nil
}

func decodeDictInfo(b []byte) (entry.DictInfo, error) {
	var d entry.DictInfo
	if err := msgpack.Unmarshal(b, &d); err != nil {
		return entry.DictInfo{}, fmt.Errorf("decode dictInfo: %w", err)
	}
	return d, nil
}
