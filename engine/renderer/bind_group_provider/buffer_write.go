package bind_group_provider

import "fmt"

// BufferWrite describes a single queue write into a provider's uniform buffer at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Offset   uint64
	Data     []byte
}

// Validate checks that the write fits the provider's buffer and satisfies the queue's 4-byte alignment.
//
// Returns:
//   - error: ErrBufferOverflow or ErrUnalignedWrite wrapped with the offending range, or nil
func (w BufferWrite) Validate() error {
	if w.Provider == nil {
		return fmt.Errorf("%w: no provider", ErrBufferOverflow)
	}
	size := w.Provider.Size()
	end := w.Offset + uint64(len(w.Data))
	if end < w.Offset || end > size {
		return fmt.Errorf("%w: %s write [%d, %d) exceeds %d bytes", ErrBufferOverflow, w.Provider.Label(), w.Offset, end, size)
	}
	if w.Offset%4 != 0 || len(w.Data)%4 != 0 {
		return fmt.Errorf("%w: %s offset %d length %d", ErrUnalignedWrite, w.Provider.Label(), w.Offset, len(w.Data))
	}
	return nil
}
