// Package nifti reads NIfTI-1 file headers. Only the dimension array is
// decoded: the front end needs image shapes for validation and preview,
// never voxel data.
package nifti

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotImage marks a file that is not a NIfTI-1 image.
var ErrNotImage = errors.New("not a NIfTI-1 image")

const headerSize = 348

// Loader reads shapes from the local filesystem. It satisfies
// validate.ImageLoader.
type Loader struct{}

func (Loader) Shape(path string) ([]int, error) {
	return Shape(path)
}

// Shape returns the dimension sizes of a .nii or .nii.gz image.
func Shape(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, ErrNotImage)
		}
		defer gz.Close()
		r = gz
	}

	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotImage)
	}
	return decodeShape(hdr, path)
}

func decodeShape(hdr []byte, path string) ([]int, error) {
	// sizeof_hdr doubles as the endianness probe.
	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(hdr[0:4]) != headerSize {
		order = binary.BigEndian
		if order.Uint32(hdr[0:4]) != headerSize {
			return nil, fmt.Errorf("%s: %w", path, ErrNotImage)
		}
	}

	magic := string(hdr[344:347])
	if magic != "n+1" && magic != "ni1" {
		return nil, fmt.Errorf("%s: %w", path, ErrNotImage)
	}

	ndim := int(int16(order.Uint16(hdr[40:42])))
	if ndim < 1 || ndim > 7 {
		return nil, fmt.Errorf("%s: invalid dimension count %d: %w", path, ndim, ErrNotImage)
	}
	dims := make([]int, ndim)
	for i := 0; i < ndim; i++ {
		dims[i] = int(int16(order.Uint16(hdr[42+2*i : 44+2*i])))
	}
	return dims, nil
}
