package disc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ioctlCDROMReadTOCHeader = 0x5305
	ioctlCDROMReadTOCEntry  = 0x5306

	cdromLBA       = 0x01
	cdromLeadOut   = 0xAA
	cdromDataTrack = 0x04

	// dataSessionGap is the lead-out/lead-in gap separating the audio session
	// from a trailing data session on enhanced CDs.
	dataSessionGap = 11400
)

type tocHeader struct {
	First uint8
	Last  uint8
}

type tocEntry struct {
	Track    uint8
	AdrCtrl  uint8
	Format   uint8
	_        uint8
	Addr     int32
	DataMode uint8
	_        [3]uint8
}

// tocRecord is a raw TOC entry with its LBA address (no pregap).
type tocRecord struct {
	Number int
	LBA    int
	Data   bool
}

func readTOC(fd int) ([]tocRecord, int, error) {
	var hdr tocHeader
	if err := ioctlPtr(fd, ioctlCDROMReadTOCHeader, unsafe.Pointer(&hdr)); err != nil {
		return nil, 0, fmt.Errorf("read toc header: %w", err)
	}
	if hdr.First == 0 || hdr.Last < hdr.First {
		return nil, 0, fmt.Errorf("invalid toc header %d-%d", hdr.First, hdr.Last)
	}

	records := make([]tocRecord, 0, int(hdr.Last-hdr.First)+1)
	for n := int(hdr.First); n <= int(hdr.Last); n++ {
		entry := tocEntry{Track: uint8(n), Format: cdromLBA}
		if err := ioctlPtr(fd, ioctlCDROMReadTOCEntry, unsafe.Pointer(&entry)); err != nil {
			return nil, 0, fmt.Errorf("read toc entry %d: %w", n, err)
		}
		records = append(records, tocRecord{
			Number: n,
			LBA:    int(entry.Addr),
			Data:   (entry.AdrCtrl>>4)&cdromDataTrack != 0,
		})
	}

	leadOut := tocEntry{Track: cdromLeadOut, Format: cdromLBA}
	if err := ioctlPtr(fd, ioctlCDROMReadTOCEntry, unsafe.Pointer(&leadOut)); err != nil {
		return nil, 0, fmt.Errorf("read lead-out: %w", err)
	}
	return records, int(leadOut.Addr), nil
}

func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// audioLayout drops a trailing data session and shifts addresses by the
// pregap. It returns the first audio track number, the audio offsets, and the
// adjusted lead-out.
func audioLayout(records []tocRecord, leadOutLBA int) (int, []int, int, error) {
	if len(records) == 0 {
		return 0, nil, 0, fmt.Errorf("empty table of contents")
	}
	if records[0].Data && len(records) == 1 {
		return 0, nil, 0, fmt.Errorf("data disc has no audio tracks")
	}

	leadOut := leadOutLBA
	last := len(records)
	if len(records) > 1 && records[last-1].Data {
		leadOut = records[last-1].LBA - dataSessionGap
		last--
	}

	offsets := make([]int, 0, last)
	for _, record := range records[:last] {
		offsets = append(offsets, record.LBA+PregapSectors)
	}
	return records[0].Number, offsets, leadOut + PregapSectors, nil
}
