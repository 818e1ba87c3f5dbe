// This file implements dataset persistence.
//
// The serialization format is:
//  1. Magic number (4 bytes) - "VECD" identifier for validation
//  2. Version (4 bytes) - format version
//  3. Flags (4 bytes) - bit 0: zstd-compressed payload, bit 1: quantized payload
//  4. Embedding count (4 bytes)
//  5. Dimensionality (4 bytes)
//  6. For quantized payloads only: codec kind length (4 bytes) + kind string
//  7. Payload (zstd-framed when bit 0 is set), one record per embedding:
//     - ID length (4 bytes) + ID bytes
//     - raw: dim float32 components
//     - quantized: code bytes + scale (4 bytes) + offset (4 bytes)
//
// All integers and floats are little-endian. Loading a quantized file
// dequantizes every record, so the roundtrip is lossy by exactly the codec's
// reconstruction error.
package vectro

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

const datasetMagic = "VECD"

const datasetFormatVersion = 1

const (
	flagZstd      = 1 << 0
	flagQuantized = 1 << 1
)

// Bounds on untrusted header fields. A corrupt or hostile file must fail
// validation before any field-sized allocation happens.
const (
	maxFileDim   = 1 << 20
	maxFileIDLen = 1 << 16
)

// countingWriter tracks bytes written through it so WriteTo can satisfy the
// io.WriterTo contract while the payload goes through a compressor.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// countingReader mirrors countingWriter for ReadFrom.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// WriteTo serializes the dataset in raw (lossless) form with a
// zstd-compressed payload. Implements io.WriterTo.
func (d *Dataset) WriteTo(w io.Writer) (int64, error) {
	return d.writeTo(w, "", nil)
}

// WriteQuantizedTo serializes the dataset with every vector quantized
// through the given codec. Loading dequantizes, so this is lossy. An empty
// kind defaults to SQ8.
func (d *Dataset) WriteQuantizedTo(w io.Writer, kind CodecKind) (int64, error) {
	if kind == "" {
		kind = SQ8
	}
	codec, err := NewQuantizer(kind)
	if err != nil {
		return 0, err
	}
	return d.writeTo(w, kind, codec)
}

func (d *Dataset) writeTo(w io.Writer, kind CodecKind, codec Quantizer) (int64, error) {
	cw := &countingWriter{w: w}

	flags := uint32(flagZstd)
	if codec != nil {
		flags |= flagQuantized
	}

	if _, err := cw.Write([]byte(datasetMagic)); err != nil {
		return cw.n, fmt.Errorf("failed to write magic number: %w", err)
	}
	for _, v := range []uint32{datasetFormatVersion, flags, uint32(d.Len()), uint32(d.Dim())} {
		if err := binary.Write(cw, binary.LittleEndian, v); err != nil {
			return cw.n, fmt.Errorf("failed to write header: %w", err)
		}
	}
	if codec != nil {
		if err := writeString(cw, string(kind)); err != nil {
			return cw.n, fmt.Errorf("failed to write codec kind: %w", err)
		}
	}

	enc, err := zstd.NewWriter(cw)
	if err != nil {
		return cw.n, fmt.Errorf("failed to create compressor: %w", err)
	}

	for i := 0; i < d.Len(); i++ {
		e := d.At(i)
		if err := writeString(enc, e.ID); err != nil {
			return cw.n, fmt.Errorf("failed to write record %d id: %w", i, err)
		}
		if codec == nil {
			if err := binary.Write(enc, binary.LittleEndian, e.Vector); err != nil {
				return cw.n, fmt.Errorf("failed to write record %d vector: %w", i, err)
			}
			continue
		}
		qv := codec.Quantize(e.Vector)
		if _, err := enc.Write(qv.Codes); err != nil {
			return cw.n, fmt.Errorf("failed to write record %d codes: %w", i, err)
		}
		if err := binary.Write(enc, binary.LittleEndian, []float32{qv.Scale, qv.Offset}); err != nil {
			return cw.n, fmt.Errorf("failed to write record %d parameters: %w", i, err)
		}
	}

	if err := enc.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to flush compressor: %w", err)
	}
	return cw.n, nil
}

// ReadFrom deserializes a dataset written by WriteTo or WriteQuantizedTo,
// replacing the receiver's contents. Implements io.ReaderFrom.
//
// The reported byte count is the compressed (on-the-wire) size consumed from
// r, which may include compressor readahead.
func (d *Dataset) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(cr, magic); err != nil {
		return cr.n, fmt.Errorf("failed to read magic number: %w", err)
	}
	if string(magic) != datasetMagic {
		return cr.n, fmt.Errorf("invalid magic number %q, expected %q", magic, datasetMagic)
	}

	var version, flags, count, dim uint32
	for _, v := range []*uint32{&version, &flags, &count, &dim} {
		if err := binary.Read(cr, binary.LittleEndian, v); err != nil {
			return cr.n, fmt.Errorf("failed to read header: %w", err)
		}
	}
	if version != datasetFormatVersion {
		return cr.n, fmt.Errorf("unsupported format version %d", version)
	}
	if count > 0 && (dim == 0 || dim > maxFileDim) {
		return cr.n, fmt.Errorf("implausible dimensionality %d", dim)
	}

	var codec Quantizer
	if flags&flagQuantized != 0 {
		kind, err := readString(cr)
		if err != nil {
			return cr.n, fmt.Errorf("failed to read codec kind: %w", err)
		}
		codec, err = NewQuantizer(CodecKind(kind))
		if err != nil {
			return cr.n, err
		}
	}

	payload := io.Reader(cr)
	if flags&flagZstd != 0 {
		dec, err := zstd.NewReader(cr)
		if err != nil {
			return cr.n, fmt.Errorf("failed to create decompressor: %w", err)
		}
		defer dec.Close()
		payload = dec
	}

	// The count is untrusted; it caps the preallocation hint, never the
	// allocation itself. A lying header fails at the payload read instead.
	capHint := int(count)
	if capHint > 1<<16 {
		capHint = 1 << 16
	}

	d.dim = 0
	d.embeddings = make([]Embedding, 0, capHint)
	for i := uint32(0); i < count; i++ {
		id, err := readString(payload)
		if err != nil {
			return cr.n, fmt.Errorf("failed to read record %d id: %w", i, err)
		}

		vec := make([]float32, dim)
		if codec == nil {
			if err := binary.Read(payload, binary.LittleEndian, vec); err != nil {
				return cr.n, fmt.Errorf("failed to read record %d vector: %w", i, err)
			}
		} else {
			qv := QuantizedVector{Codes: make([]byte, codec.CodeBytes(int(dim)))}
			if _, err := io.ReadFull(payload, qv.Codes); err != nil {
				return cr.n, fmt.Errorf("failed to read record %d codes: %w", i, err)
			}
			params := make([]float32, 2)
			if err := binary.Read(payload, binary.LittleEndian, params); err != nil {
				return cr.n, fmt.Errorf("failed to read record %d parameters: %w", i, err)
			}
			qv.Scale, qv.Offset = params[0], params[1]
			vec = codec.Dequantize(qv, vec)
		}

		if err := d.Add(id, vec); err != nil {
			return cr.n, fmt.Errorf("failed to append record %d: %w", i, err)
		}
	}
	return cr.n, nil
}

// Save writes the dataset to path in raw (lossless) form.
func (d *Dataset) Save(path string) error {
	return saveTo(path, func(w io.Writer) (int64, error) { return d.WriteTo(w) })
}

// SaveQuantized writes the dataset to path with each vector quantized
// through the given codec.
func (d *Dataset) SaveQuantized(path string, kind CodecKind) error {
	return saveTo(path, func(w io.Writer) (int64, error) { return d.WriteQuantizedTo(w, kind) })
}

// LoadDataset reads a dataset file written by Save or SaveQuantized.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	d := NewDataset()
	if _, err := d.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("failed to read dataset from %s: %w", path, err)
	}
	return d, nil
}

func saveTo(path string, write func(io.Writer) (int64, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	if _, err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close dataset file: %w", err)
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxFileIDLen {
		return "", fmt.Errorf("string length %d exceeds limit %d", n, maxFileIDLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
