package batch

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"go.uber.org/zap"

	"github.com/wippyai/abcdump/errors"
)

// mappedFile is a read-only view of a file. Data is only valid until
// Close is called.
type mappedFile struct {
	Data mmap.MMap
	file *os.File
}

// Close unmaps the file and releases its descriptor.
func (f *mappedFile) Close() error {
	if f.file == nil {
		return nil
	}
	var err error
	if f.Data != nil {
		err = f.Data.Unmap()
	}
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// openMapped maps path read-only, falling back to os.ReadFile when the
// mapping fails. Empty files are never mapped.
func openMapped(path string) (*mappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Load("stat "+path, err)
	}
	if stat.Size() == 0 {
		file.Close()
		return &mappedFile{}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		Logger().Debug("mmap failed, using fallback", zap.String("path", path), zap.Error(err))
		file.Close()

		buf, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, errors.Load("read "+path, readErr)
		}
		return &mappedFile{Data: mmap.MMap(buf)}, nil
	}
	return &mappedFile{Data: data, file: file}, nil
}
