// Package serialization stores and restores model parameters.
//
// A checkpoint is a single file holding named tensors together with a
// small training record (epoch, step, cost). The layout is a fixed
// prelude (magic bytes, format version, SHA-256 checksum), a JSON
// header describing every tensor, and the raw tensor data:
//
//	[0:4]    magic "BRCK"
//	[4:8]    format version, little-endian uint32
//	[8:40]   SHA-256 checksum of everything after the prelude
//	[40:44]  header length, little-endian uint32
//	[44:...] JSON header
//	[...]    tensor data, offsets relative to the end of the header
//
// The checksum covers the header and the data section, so torn writes
// and bit rot surface as ErrChecksumMismatch instead of silently
// corrupted parameters.
package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

const (
	// MagicBytes identifies a checkpoint file.
	MagicBytes = "BRCK"

	// FormatVersion is the current checkpoint format version.
	FormatVersion = 1

	// ChecksumSize is the size of the SHA-256 checksum in bytes.
	ChecksumSize = 32

	// preludeSize is the byte length of the fixed prelude: magic,
	// version, checksum and header length.
	preludeSize = 4 + 4 + ChecksumSize + 4
)

// TensorMeta locates one tensor inside the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

// Meta carries the training state stored alongside the parameters.
// RunID links the checkpoint back to the training log it was written
// under.
type Meta struct {
	Epoch int     `json:"epoch"`
	Step  int     `json:"step"`
	Cost  float64 `json:"cost"`
	RunID string  `json:"run_id,omitempty"`
}

// header is the JSON document between the prelude and the data
// section.
type header struct {
	FormatVersion int          `json:"format_version"`
	CreatedAt     time.Time    `json:"created_at"`
	Tensors       []TensorMeta `json:"tensors"`
	Training      *Meta        `json:"training,omitempty"`
}

// Save writes the parameters of a model to path as a checkpoint.
// Tensors are stored under their parameter names, which must be
// unique. meta may be nil when there is no training state to record.
func Save[B tensor.Backend](path string, params []*nn.Parameter[B], meta *Meta) error {
	metas := make([]TensorMeta, 0, len(params))
	blobs := make([][]byte, 0, len(params))
	seen := make(map[string]struct{}, len(params))

	var offset int64
	for _, p := range params {
		name := p.Name()
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTensor, name)
		}
		seen[name] = struct{}{}

		raw := p.Tensor().Raw()
		data := raw.Data()
		metas = append(metas, TensorMeta{
			Name:   name,
			DType:  raw.DType().String(),
			Shape:  append([]int(nil), raw.Shape()...),
			Offset: offset,
			Size:   int64(len(data)),
		})
		blobs = append(blobs, data)
		offset += int64(len(data))
	}

	headerJSON, err := json.Marshal(header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       metas,
		Training:      meta,
	})
	if err != nil {
		return fmt.Errorf("encode checkpoint header: %w", err)
	}

	// The checksum covers the header length, the header and the data.
	payload := make([]byte, 0, 4+len(headerJSON)+int(offset))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(headerJSON)))
	payload = append(payload, headerJSON...)
	for _, blob := range blobs {
		payload = append(payload, blob...)
	}
	checksum := sha256.Sum256(payload)

	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint file: %w", err)
	}
	for _, chunk := range [][]byte{[]byte(MagicBytes), versionBytes(), checksum[:], payload} {
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			return fmt.Errorf("write checkpoint: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close checkpoint file: %w", err)
	}
	return nil
}

func versionBytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, FormatVersion)
	return buf
}

// Load reads every tensor from a checkpoint file. Tensors come back
// on the CPU device regardless of where they lived when saved. The
// returned Meta is nil when the file carries no training record.
func Load(path string) (map[string]*tensor.RawTensor, *Meta, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read checkpoint: %w", err)
	}
	if len(file) < preludeSize {
		return nil, nil, ErrTruncated
	}
	if string(file[:4]) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(file[4:8]); version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var stored [ChecksumSize]byte
	copy(stored[:], file[8:8+ChecksumSize])
	payload := file[8+ChecksumSize:]
	if sha256.Sum256(payload) != stored {
		return nil, nil, ErrChecksumMismatch
	}

	headerLen := binary.LittleEndian.Uint32(payload[:4])
	rest := payload[4:]
	if int64(headerLen) > int64(len(rest)) {
		return nil, nil, fmt.Errorf("%w: header length %d exceeds file size", ErrTruncated, headerLen)
	}
	var hdr header
	if err := json.Unmarshal(rest[:headerLen], &hdr); err != nil {
		return nil, nil, fmt.Errorf("decode checkpoint header: %w", err)
	}

	data := rest[headerLen:]
	tensors := make(map[string]*tensor.RawTensor, len(hdr.Tensors))
	for _, tm := range hdr.Tensors {
		if _, dup := tensors[tm.Name]; dup {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateTensor, tm.Name)
		}
		dt, err := parseDType(tm.DType)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", tm.Name, err)
		}
		end := tm.Offset + tm.Size
		if tm.Offset < 0 || tm.Size < 0 || end > int64(len(data)) {
			return nil, nil, fmt.Errorf("%w: tensor %q range [%d, %d)", ErrOutOfBounds, tm.Name, tm.Offset, end)
		}
		rt, err := tensor.NewRaw(tensor.Shape(tm.Shape), dt, tensor.CPU)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", tm.Name, err)
		}
		if int64(len(rt.Data())) != tm.Size {
			return nil, nil, fmt.Errorf("%w: tensor %q holds %d bytes, shape %v wants %d",
				ErrShapeMismatch, tm.Name, tm.Size, tm.Shape, len(rt.Data()))
		}
		copy(rt.Data(), data[tm.Offset:end])
		tensors[tm.Name] = rt
	}
	return tensors, hdr.Training, nil
}

// LoadInto restores parameter values from a checkpoint in place.
// Every parameter must be present in the file with a matching shape
// and dtype. Tensors in the file that match no parameter are left
// alone, so a checkpoint of a larger model can warm-start a subset.
func LoadInto[B tensor.Backend](path string, params []*nn.Parameter[B]) (*Meta, error) {
	tensors, meta, err := Load(path)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		rt, ok := tensors[p.Name()]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrTensorMissing, p.Name())
		}
		dst := p.Tensor().Raw()
		if dst.DType() != rt.DType() {
			return nil, fmt.Errorf("%w: %q is %s, checkpoint has %s",
				ErrDTypeMismatch, p.Name(), dst.DType(), rt.DType())
		}
		if !dst.Shape().Equal(rt.Shape()) {
			return nil, fmt.Errorf("%w: %q is %v, checkpoint has %v",
				ErrShapeMismatch, p.Name(), dst.Shape(), rt.Shape())
		}
		copy(dst.Data(), rt.Data())
	}
	return meta, nil
}

func parseDType(s string) (tensor.DataType, error) {
	switch s {
	case "float32":
		return tensor.Float32, nil
	case "float64":
		return tensor.Float64, nil
	case "int32":
		return tensor.Int32, nil
	case "int64":
		return tensor.Int64, nil
	case "uint8":
		return tensor.Uint8, nil
	case "bool":
		return tensor.Bool, nil
	default:
		return tensor.Float32, fmt.Errorf("%w: %q", ErrUnknownDType, s)
	}
}
