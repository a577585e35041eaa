package testutil

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// TIFF tag IDs and types used by ExifFixture.
const (
	tagModel            uint16 = 0x0110
	tagExifIFDPointer   uint16 = 0x8769
	tagExposureTime     uint16 = 0x829A
	tagFNumber          uint16 = 0x829D
	tagISOSpeedRatings  uint16 = 0x8827
	tagDateTimeOriginal uint16 = 0x9003
	tagFocalLength      uint16 = 0x920A
	tagLensModel        uint16 = 0xA434

	typeShort    uint16 = 3
	typeASCII    uint16 = 2
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

var le = binary.LittleEndian

// ExifFixture describes the tracked tags of a synthetic photo. Tags named in Omit
// (by their EXIF name, e.g. "LensModel") are left out of the encoded block.
type ExifFixture struct {
	DateTimeOriginal string
	Model            string
	LensModel        string
	FNumber          [2]uint32
	ExposureTime     [2]uint32
	ISO              uint16
	FocalLength      [2]uint32
	Omit             []string
}

// DefaultFixture returns a fixture with every tracked tag set.
func DefaultFixture() ExifFixture {
	return ExifFixture{
		DateTimeOriginal: "2023:05:01 12:30:00",
		Model:            "X-T4",
		LensModel:        "XF35mmF1.4 R",
		FNumber:          [2]uint32{28, 10},
		ExposureTime:     [2]uint32{1, 200},
		ISO:              400,
		FocalLength:      [2]uint32{35, 1},
	}
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// TIFF encodes the fixture as a little-endian TIFF stream: IFD0 holding Model and the
// Exif IFD pointer, followed by the Exif IFD.
func (f ExifFixture) TIFF() []byte {
	omit := make(map[string]bool, len(f.Omit))
	for _, name := range f.Omit {
		omit[name] = true
	}

	var ifd0, exifIFD []ifdEntry
	if !omit["Model"] {
		ifd0 = append(ifd0, asciiEntry(tagModel, f.Model))
	}
	if !omit["DateTimeOriginal"] {
		exifIFD = append(exifIFD, asciiEntry(tagDateTimeOriginal, f.DateTimeOriginal))
	}
	if !omit["LensModel"] {
		exifIFD = append(exifIFD, asciiEntry(tagLensModel, f.LensModel))
	}
	if !omit["FNumber"] {
		exifIFD = append(exifIFD, rationalEntry(tagFNumber, f.FNumber))
	}
	if !omit["ExposureTime"] {
		exifIFD = append(exifIFD, rationalEntry(tagExposureTime, f.ExposureTime))
	}
	if !omit["FocalLength"] {
		exifIFD = append(exifIFD, rationalEntry(tagFocalLength, f.FocalLength))
	}
	if !omit["ISOSpeedRatings"] {
		exifIFD = append(exifIFD, shortEntry(tagISOSpeedRatings, f.ISO))
	}

	const ifd0Offset = 8
	pointer := ifdEntry{tag: tagExifIFDPointer, typ: typeLong, count: 1, data: make([]byte, 4)}
	ifd0 = append(ifd0, pointer)
	exifOffset := uint32(ifd0Offset + ifdSize(ifd0))
	le.PutUint32(ifd0[len(ifd0)-1].data, exifOffset)

	var buf bytes.Buffer
	buf.WriteString("II")
	_ = binary.Write(&buf, le, uint16(42))
	_ = binary.Write(&buf, le, uint32(ifd0Offset))
	buf.Write(layoutIFD(ifd0, ifd0Offset))
	buf.Write(layoutIFD(exifIFD, exifOffset))
	return buf.Bytes()
}

// JPEG wraps the TIFF stream in an APP1 segment of a minimal JPEG.
func (f ExifFixture) JPEG() []byte {
	return WrapJPEG(f.TIFF())
}

// WrapJPEG wraps a TIFF stream in an APP1 "Exif" segment between SOI and EOI markers.
func WrapJPEG(tiff []byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	payload := append([]byte("Exif\x00\x00"), tiff...)
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// PlainJPEG returns a JPEG with no APP1 segment at all.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}
}

func asciiEntry(tag uint16, s string) ifdEntry {
	data := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func rationalEntry(tag uint16, v [2]uint32) ifdEntry {
	data := make([]byte, 8)
	le.PutUint32(data[0:], v[0])
	le.PutUint32(data[4:], v[1])
	return ifdEntry{tag: tag, typ: typeRational, count: 1, data: data}
}

func shortEntry(tag uint16, v uint16) ifdEntry {
	data := make([]byte, 2)
	le.PutUint16(data, v)
	return ifdEntry{tag: tag, typ: typeShort, count: 1, data: data}
}

// ifdSize is the encoded length of an IFD including its out-of-line values.
func ifdSize(entries []ifdEntry) int {
	size := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.data) > 4 {
			size += len(e.data) + len(e.data)%2
		}
	}
	return size
}

// layoutIFD encodes entries as an IFD located at offset, with values longer than
// four bytes stored right after it.
func layoutIFD(entries []ifdEntry, offset uint32) []byte {
	sorted := make([]ifdEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].tag < sorted[j].tag })

	dataOffset := offset + uint32(2+12*len(sorted)+4)
	var head, data bytes.Buffer
	_ = binary.Write(&head, le, uint16(len(sorted)))
	for _, e := range sorted {
		_ = binary.Write(&head, le, e.tag)
		_ = binary.Write(&head, le, e.typ)
		_ = binary.Write(&head, le, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			head.Write(inline)
			continue
		}
		_ = binary.Write(&head, le, dataOffset+uint32(data.Len()))
		data.Write(e.data)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(&head, le, uint32(0))
	head.Write(data.Bytes())
	return head.Bytes()
}
