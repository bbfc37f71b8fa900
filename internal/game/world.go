package game

import "encoding/json"

// ChunkSize is the edge length of the cubic chunks blocks are indexed by.
const ChunkSize = 16

// Block is one voxel observation. A position is logically occupied iff a
// block with IsAir == false was written there; never-written positions act
// as empty space.
type Block struct {
	World string `json:"world"`
	ID    string `json:"id"`
	Pos   Pos3   `json:"pos"`
	IsAir bool   `json:"is_air"`
}

// NewBlock builds a block from a scan result. A nil id means the scanner saw
// open air at that position.
func NewBlock(id *string, pos Pos3, world string) Block {
	b := Block{World: world, Pos: pos, IsAir: id == nil}
	if id != nil {
		b.ID = *id
	}
	return b
}

// ChunkContaining floor-divides a block position down to its chunk coordinate.
func ChunkContaining(pos Pos3) Pos3 {
	return Pos3{
		X: floorDiv(pos.X, ChunkSize),
		Y: floorDiv(pos.Y, ChunkSize),
		Z: floorDiv(pos.Z, ChunkSize),
	}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

const (
	chunkKeyMaskXZ = 0b001001001001001001001001001001001
	chunkKeyMaskY  = 0b010010010010010010010010010010010
)

// ChunkKey packs a chunk coordinate into the coarse integer index the blocks
// table is partitioned by. It is an indexing aid for bulk loads only;
// existence checks always go by exact block position.
func ChunkKey(chunkPos Pos3) uint32 {
	x := uint32(abs32(chunkPos.X)) & chunkKeyMaskXZ
	y := uint32(abs32(chunkPos.Y)) & chunkKeyMaskY
	z := uint32(abs32(chunkPos.Z)) & chunkKeyMaskXZ
	return x | y | z
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func chunkRelative(pos Pos3) Pos3 {
	return pos.Sub(ChunkContaining(pos).Scale(ChunkSize))
}

// Chunk holds the sparse blocks of one chunk coordinate, keyed by
// chunk-local position. It serializes as {"pos": ..., "blocks": [...]}.
type Chunk struct {
	Pos    Pos3
	Blocks map[Pos3]Block
}

// NewChunk creates an empty chunk at the given chunk coordinate.
func NewChunk(pos Pos3) *Chunk {
	return &Chunk{Pos: pos, Blocks: make(map[Pos3]Block)}
}

// SetBlock stores a block under its chunk-local position.
func (c *Chunk) SetBlock(b Block) {
	c.Blocks[chunkRelative(b.Pos)] = b
}

// BlockExists reports whether a non-air block occupies the absolute position.
func (c *Chunk) BlockExists(pos Pos3) bool {
	b, ok := c.Blocks[chunkRelative(pos)]
	return ok && !b.IsAir
}

type chunkJSON struct {
	Pos    Pos3    `json:"pos"`
	Blocks []Block `json:"blocks"`
}

func (c *Chunk) MarshalJSON() ([]byte, error) {
	out := chunkJSON{Pos: c.Pos, Blocks: make([]Block, 0, len(c.Blocks))}
	for _, b := range c.Blocks {
		out.Blocks = append(out.Blocks, b)
	}
	return json.Marshal(out)
}

func (c *Chunk) UnmarshalJSON(data []byte) error {
	var in chunkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Pos = in.Pos
	c.Blocks = make(map[Pos3]Block, len(in.Blocks))
	for _, b := range in.Blocks {
		c.Blocks[chunkRelative(b.Pos)] = b
	}
	return nil
}

// World is a named, lazily grown container of chunks. It serializes as
// {"name": ..., "chunks": [...]}.
type World struct {
	Name   string
	Chunks map[Pos3]*Chunk
}

// NewWorld creates an empty world.
func NewWorld(name string) *World {
	return &World{Name: name, Chunks: make(map[Pos3]*Chunk)}
}

// SetBlock routes a block into the chunk containing it, creating the chunk
// on first write.
func (w *World) SetBlock(b Block) {
	chunkPos := ChunkContaining(b.Pos)
	chunk, ok := w.Chunks[chunkPos]
	if !ok {
		chunk = NewChunk(chunkPos)
		w.Chunks[chunkPos] = chunk
	}
	chunk.SetBlock(b)
}

// GetBlock looks up a block by absolute position.
func (w *World) GetBlock(pos Pos3) (Block, bool) {
	chunk, ok := w.Chunks[ChunkContaining(pos)]
	if !ok {
		return Block{}, false
	}
	b, ok := chunk.Blocks[chunkRelative(pos)]
	return b, ok
}

type worldJSON struct {
	Name   string   `json:"name"`
	Chunks []*Chunk `json:"chunks"`
}

func (w *World) MarshalJSON() ([]byte, error) {
	out := worldJSON{Name: w.Name, Chunks: make([]*Chunk, 0, len(w.Chunks))}
	for _, chunk := range w.Chunks {
		out.Chunks = append(out.Chunks, chunk)
	}
	return json.Marshal(out)
}

func (w *World) UnmarshalJSON(data []byte) error {
	var in worldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	w.Name = in.Name
	w.Chunks = make(map[Pos3]*Chunk, len(in.Chunks))
	for _, chunk := range in.Chunks {
		w.Chunks[chunk.Pos] = chunk
	}
	return nil
}
