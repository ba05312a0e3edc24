package bootheader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Process applies a repair plan to a writable image. Only the fields the
// plan marks for refill are written; everything else is left untouched.
//
// Process trusts its input: the plan must have been produced by Check
// against the exact current content of the stream. No re-validation is
// performed here.
func Process(w io.WriteSeeker, plan *RepairPlan) error {
	if plan.RefillSha256 {
		if _, err := w.Seek(OffsetSha256, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to hash field: %w", err)
		}
		if _, err := w.Write(plan.Sha256[:]); err != nil {
			return fmt.Errorf("failed to write hash: %w", err)
		}
	}

	if plan.RefillHeaderCRC {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], plan.HeaderCRC)
		if _, err := w.Seek(OffsetHeaderCRC, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to header CRC field: %w", err)
		}
		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("failed to write header CRC: %w", err)
		}
	}

	return nil
}

// ProcessFile applies a repair plan to the image at the given path,
// in place. An empty plan touches nothing and returns nil without
// opening the file.
func ProcessFile(path string, plan *RepairPlan) error {
	if plan.Empty() {
		return nil
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open file for repair: %w", err)
	}

	if err := Process(f, plan); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
