package linker

// A Chunker is anything that occupies a place in the output image.
type Chunker interface {
	GetChunk() *Chunk
	// PhysicalSize is the number of file bytes, LogicalSize the number of
	// bytes in memory.
	PhysicalSize() uint64
	LogicalSize() uint64
	// Layout runs once the chunk has been assigned its address and offset.
	Layout() error
	Encode() []byte
}

type Chunk struct {
	Name       string
	VirtAddr   uint64
	FileOffset uint64
	Placed     bool
}

func (c *Chunk) GetChunk() *Chunk {
	return c
}

func (c *Chunk) Layout() error {
	return nil
}

func (c *Chunk) place(virtAddr, fileOffset uint64) {
	c.VirtAddr = virtAddr
	c.FileOffset = fileOffset
	c.Placed = true
}
