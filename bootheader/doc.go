// Package bootheader validates and repairs the fixed-layout boot header of
// a flashable firmware image.
//
// # Header Layout
//
// The boot ROM expects a 0x160-byte header at the start of the image:
//
//	Offset  Size  Endian  Field
//	0x000   4     big     header magic (0x42464E50, "BFNP")
//	0x008   4     big     flash config magic (0x46434647, "FCFG")
//	0x064   4     big     clock config magic (0x50434647, "PCFG")
//	0x084   4     little  image body offset
//	0x08C   4     little  image body length
//	0x090   32    -       SHA-256 of the image body
//	0x15C   4     little  CRC-32 (IEEE) of bytes [0x000, 0x15C)
//
// # Check and Process
//
// Check performs a read-only analysis of a candidate image and returns a
// RepairPlan describing which header fields must be rewritten:
//
//	plan, err := bootheader.CheckFile("image.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !plan.Empty() {
//	    if err := bootheader.ProcessFile("image.bin", plan); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Linkers and image tools often leave the hash field filled with a
// recognizable 0xDEADBEEF sentinel pattern. Check treats such a header as
// repairable and schedules a hash refill; any other wrong hash is reported
// as a HashMismatchError since it indicates real corruption. The header
// CRC in a plan always reflects the header after the hash refill, so
// applying a plan never produces a half-repaired header.
//
// # Error Handling
//
// Check returns typed errors for every failure mode:
//   - HeadMagicError, FlashMagicError, ClockMagicError (bad magics,
//     carrying the observed value)
//   - HeaderTooShortError (file smaller than HeadLength)
//   - BodyRangeError (declared body range past end of file)
//   - HashMismatchError (stored hash is neither correct nor a sentinel)
//
// I/O failures are wrapped and propagated unchanged; nothing is retried
// and nothing is logged at this layer.
package bootheader
