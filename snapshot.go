package effects

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a compact record of the relations computed during a run. It
// is written in MessagePack so that tools can load the relations without
// parsing the text log.
type Snapshot struct {
	Propagation string             `msgpack:"propagation"`
	Functions   []FunctionSnapshot `msgpack:"functions"`
}

type FunctionSnapshot struct {
	Name   string          `msgpack:"name"`
	Blocks []BlockSnapshot `msgpack:"blocks"`
}

type BlockSnapshot struct {
	Block       int        `msgpack:"block"`
	ID          EffectID   `msgpack:"id"`
	Callee      string     `msgpack:"callee,omitempty"`
	Ancestors   []EffectID `msgpack:"ancestors"`
	Descendants []EffectID `msgpack:"descendants"`
}

// NewSnapshot collects the relations of the given results.
func NewSnapshot(mode Propagation, results []*Result) *Snapshot {
	snap := &Snapshot{Propagation: mode.String()}
	for _, res := range results {
		callees := map[EffectID]string{}
		for _, r := range res.Records {
			if r.Kind == CallEdge {
				callees[r.Block] = r.Text
			}
		}

		fn := FunctionSnapshot{Name: res.Function}
		for _, bb := range res.Blocks {
			id := res.IDs[bb]
			fn.Blocks = append(fn.Blocks, BlockSnapshot{
				Block:       int(bb),
				ID:          id,
				Callee:      callees[id],
				Ancestors:   res.Ancestors[bb],
				Descendants: res.Descendants[bb],
			})
		}
		snap.Functions = append(snap.Functions, fn)
	}
	return snap
}

func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(snap)
}

func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot writes snap to the file at path, replacing it.
func SaveSnapshot(path string, snap *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	if err := WriteSnapshot(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return f.Close()
}

func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	return ReadSnapshot(f)
}
