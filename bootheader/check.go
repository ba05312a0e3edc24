package bootheader

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// RepairPlan lists the header fields that must be rewritten to make an
// image internally consistent. A zero plan means the image needs no repair.
//
// A plan is only valid against the exact file content it was computed from;
// callers must not modify the file between Check and Process.
type RepairPlan struct {
	// Sha256 is the digest to write at OffsetSha256 when RefillSha256 is set
	Sha256 [HashSize]byte

	// RefillSha256 indicates the stored hash is an unfilled sentinel and
	// must be replaced with Sha256
	RefillSha256 bool

	// HeaderCRC is the value to write at OffsetHeaderCRC when
	// RefillHeaderCRC is set
	HeaderCRC uint32

	// RefillHeaderCRC indicates the stored header CRC must be replaced
	RefillHeaderCRC bool
}

// Empty reports whether the plan requires no writes at all.
func (p *RepairPlan) Empty() bool {
	return !p.RefillSha256 && !p.RefillHeaderCRC
}

// sentinelHashes are the placeholder patterns emitted by image tooling that
// has not computed a body hash yet. Kept as an explicit allow-list so new
// patterns can be added without weakening the corruption check.
var sentinelHashes = [2][HashSize]byte{
	// 0xDEADBEEF (little-endian) followed by zeros
	{0xDE, 0xAD, 0xBE, 0xEF},

	// 0xDEADBEEF (little-endian) repeated across the whole field
	{
		0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF,
		0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF,
		0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF,
		0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF,
	},
}

func isSentinelHash(h [HashSize]byte) bool {
	for _, s := range sentinelHashes {
		if h == s {
			return true
		}
	}
	return false
}

// CheckFile validates the boot header of the image at the given path.
// The file is opened read-only. Returns the repair plan or an error if the
// header is invalid beyond repair.
//
// Example:
//
//	plan, err := bootheader.CheckFile("image.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !plan.Empty() {
//	    // reopen writable and apply with bootheader.ProcessFile
//	}
func CheckFile(path string) (*RepairPlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return Check(f, fi.Size())
}

// Check validates the boot header of a candidate image and computes the
// repairs needed to make it consistent. The stream is read-only; fileLen
// must be the total length of the underlying image.
//
// Check verifies, in order: the header magic, the minimum file length, the
// flash and clock config magics, the declared body range, the SHA-256 body
// hash and the header CRC-32. A stored hash that matches a known sentinel
// pattern schedules a hash refill instead of failing; the header CRC is
// always computed over the header as it would look after that refill.
//
// The stream position after Check is unspecified.
func Check(r io.ReadSeeker, fileLen int64) (*RepairPlan, error) {
	headMagic, err := readUint32BE(r, OffsetHeadMagic)
	if err != nil {
		return nil, err
	}
	if headMagic != HeadMagic {
		return nil, &HeadMagicError{Got: headMagic}
	}

	if fileLen < HeadLength {
		return nil, &HeaderTooShortError{Length: fileLen}
	}

	flashMagic, err := readUint32BE(r, OffsetFlashMagic)
	if err != nil {
		return nil, err
	}
	if flashMagic != FlashMagic {
		return nil, &FlashMagicError{Got: flashMagic}
	}

	clockMagic, err := readUint32BE(r, OffsetClockMagic)
	if err != nil {
		return nil, err
	}
	if clockMagic != ClockMagic {
		return nil, &ClockMagicError{Got: clockMagic}
	}

	bodyStart, err := readUint32LE(r, OffsetBodyStart)
	if err != nil {
		return nil, err
	}
	bodyLen, err := readUint32LE(r, OffsetBodyLength)
	if err != nil {
		return nil, err
	}

	// 64-bit sum so a bogus header cannot wrap the bounds check
	if uint64(bodyStart)+uint64(bodyLen) > uint64(fileLen) {
		return nil, &BodyRangeError{FileLength: fileLen, Offset: bodyStart, Length: bodyLen}
	}

	var stored [HashSize]byte
	if _, err := r.Seek(OffsetSha256, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to stored hash: %w", err)
	}
	if _, err := io.ReadFull(r, stored[:]); err != nil {
		return nil, fmt.Errorf("failed to read stored hash: %w", err)
	}

	// Stream-hash exactly the declared body range.
	if _, err := r.Seek(int64(bodyStart), io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to image body: %w", err)
	}
	digest := sha256.New()
	if _, err := io.CopyN(digest, r, int64(bodyLen)); err != nil {
		return nil, fmt.Errorf("failed to hash image body: %w", err)
	}
	var computed [HashSize]byte
	digest.Sum(computed[:0])

	plan := &RepairPlan{}
	if computed != stored {
		if !isSentinelHash(stored) {
			return nil, &HashMismatchError{Stored: stored, Computed: computed}
		}
		plan.Sha256 = computed
		plan.RefillSha256 = true
	}

	// CRC the header prefix as it will look after any pending hash refill,
	// so the plan never leaves a stale CRC behind a fresh hash.
	head := make([]byte, OffsetHeaderCRC)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to header: %w", err)
	}
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if plan.RefillSha256 {
		copy(head[OffsetSha256:OffsetSha256+HashSize], plan.Sha256[:])
	}
	crc := crc32.ChecksumIEEE(head)

	storedCRC, err := readUint32LE(r, OffsetHeaderCRC)
	if err != nil {
		return nil, err
	}
	if storedCRC != crc || plan.RefillSha256 {
		plan.HeaderCRC = crc
		plan.RefillHeaderCRC = true
	}

	return plan, nil
}

func readUint32BE(r io.ReadSeeker, off int64) (uint32, error) {
	var buf [4]byte
	if err := readAt(r, off, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readUint32LE(r io.ReadSeeker, off int64) (uint32, error) {
	var buf [4]byte
	if err := readAt(r, off, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readAt(r io.ReadSeeker, off int64, buf []byte) error {
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to 0x%X: %w", off, err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("failed to read %d bytes at 0x%X: %w", len(buf), off, err)
	}
	return nil
}
