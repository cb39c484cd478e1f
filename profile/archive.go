// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
	"golang.org/x/exp/mmap"
)

// Archive errors
var (
	ErrFileFormat = errors.New("corrupted or not a profile archive")
	ErrNotFound   = errors.New("profile not in archive")
)

// Sizes relevant to the archive preamble
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 16
)

// MaxProfileSize bounds the decompressed size of a single entry.
const MaxProfileSize = 16 << 20

var magic = [MagicLength]byte{'G', 'R', 'V', '\x00'}

// IndexEntry locates one profile in the archive. Offset is counted from
// the end of the header.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the gob encoded archive header.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

type entry struct {
	name       string
	size       int64
	compressed []byte
}

// Builder collects profiles and writes them out as an archive. Every
// profile is compressed separately, so single entries can be read
// straight from their place. Safe for concurrent use.
type Builder struct {
	header Header

	mutex   sync.Mutex
	entries []entry
}

// NewBuilder creates a Builder. Index in header is ignored.
func NewBuilder(header Header) *Builder {
	header.Index = nil
	return &Builder{header: header}
}

// Add compresses p into the builder. Names must be unique.
func (b *Builder) Add(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var raw bytes.Buffer
	if err := p.Encode(&raw); err != nil {
		return err
	}
	size := int64(raw.Len())

	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := io.Copy(writer, &raw); err != nil {
		return errors.Wrapf(err, "compress profile %q", p.Name)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "compress profile %q", p.Name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, e := range b.entries {
		if e.name == p.Name {
			return errors.Newf("profile %q added twice", p.Name)
		}
	}
	b.entries = append(b.entries, entry{
		name:       p.Name,
		size:       size,
		compressed: compressed.Bytes(),
	})
	return nil
}

// WriteTo writes the archive to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = make([]IndexEntry, 0, len(b.entries))
	var offset int64
	for _, e := range b.entries {
		header.Index = append(header.Index, IndexEntry{
			Name:           e.name,
			Offset:         offset,
			Size:           e.size,
			CompressedSize: int64(len(e.compressed)),
		})
		offset += int64(len(e.compressed))
	}

	var rawHeader bytes.Buffer
	if err := gob.NewEncoder(&rawHeader).Encode(header); err != nil {
		return 0, errors.Wrap(err, "encode archive header")
	}

	headerSize := make([]byte, HeaderSizeNumberLength)
	binary.PutVarint(headerSize, int64(rawHeader.Len()))

	var written int64
	chunks := [][]byte{magic[:], headerSize, rawHeader.Bytes()}
	for _, e := range b.entries {
		chunks = append(chunks, e.compressed)
	}
	for _, chunk := range chunks {
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write archive")
		}
	}
	return written, nil
}

// WriteArchive writes profiles to w as a single archive.
func WriteArchive(w io.Writer, header Header, profiles ...Profile) error {
	b := NewBuilder(header)
	for _, p := range profiles {
		if err := b.Add(p); err != nil {
			return err
		}
	}
	_, err := b.WriteTo(w)
	return err
}

// Archive reads profiles from an archive. It can be read from concurrently.
type Archive struct {
	reader io.ReaderAt
	header Header
	base   int64
}

// OpenArchive opens the archive in r, checking it actually is one.
func OpenArchive(r io.ReaderAt) (*Archive, error) {
	preamble := make([]byte, MagicLength+HeaderSizeNumberLength)
	if n, _ := r.ReadAt(preamble, 0); n < len(preamble) {
		return nil, errors.Wrapf(ErrFileFormat, "preamble is %d bytes", n)
	}
	if !bytes.Equal(preamble[:MagicLength], magic[:]) {
		return nil, ErrFileFormat
	}

	headerSize, n := binary.Varint(preamble[MagicLength:])
	if n <= 0 || headerSize <= 0 {
		return nil, errors.Wrap(ErrFileFormat, "bad header size")
	}

	base := int64(MagicLength + HeaderSizeNumberLength)
	var header Header
	if err := gob.NewDecoder(io.NewSectionReader(r, base, headerSize)).Decode(&header); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode archive header"), ErrFileFormat)
	}

	total, sized := readerSize(r)
	if sized && headerSize > total-base {
		return nil, errors.Wrapf(ErrFileFormat, "header runs past the end")
	}
	for _, e := range header.Index {
		if err := e.check(total-base-headerSize, sized); err != nil {
			return nil, err
		}
	}

	return &Archive{
		reader: r,
		header: header,
		base:   base + headerSize,
	}, nil
}

func (e IndexEntry) check(data int64, sized bool) error {
	switch {
	case e.Offset < 0, e.Size < 0, e.CompressedSize < 0:
		return errors.Wrapf(ErrFileFormat, "entry %q has negative bounds", e.Name)
	case e.Size > MaxProfileSize:
		return errors.Wrapf(ErrFileFormat, "entry %q is %d bytes", e.Name, e.Size)
	case sized && (e.Offset > data || e.CompressedSize > data-e.Offset):
		return errors.Wrapf(ErrFileFormat, "entry %q runs past the end", e.Name)
	}
	return nil
}

func readerSize(r io.ReaderAt) (int64, bool) {
	switch r := r.(type) {
	case interface{ Size() int64 }:
		return r.Size(), true
	case interface{ Len() int }:
		return int64(r.Len()), true
	}
	return 0, false
}

// OpenArchiveFile memory maps the archive at path. Close releases it.
func OpenArchiveFile(path string) (*Archive, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", path)
	}
	ar, err := OpenArchive(r)
	if err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "open archive %s", path)
	}
	return ar, nil
}

// Header returns the archive header.
func (a *Archive) Header() Header {
	return a.header
}

// Names lists the profiles in the archive, sorted.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.header.Index))
	for _, e := range a.header.Index {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Load decompresses and decodes the profile called name.
func (a *Archive) Load(name string) (Profile, error) {
	for _, e := range a.header.Index {
		if e.Name != name {
			continue
		}
		section := io.NewSectionReader(a.reader, a.base+e.Offset, e.CompressedSize)
		raw := make([]byte, e.Size)
		if _, err := io.ReadFull(lz4.NewReader(section), raw); err != nil {
			return Profile{}, errors.Mark(errors.Wrapf(err, "decompress profile %q", name), ErrFileFormat)
		}
		return Decode(bytes.NewReader(raw))
	}
	return Profile{}, errors.Wrapf(ErrNotFound, "%q", name)
}

// Close releases the underlying reader if it needs releasing.
func (a *Archive) Close() error {
	if c, ok := a.reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
