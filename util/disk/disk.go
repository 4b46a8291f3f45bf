/*
 * Sigma DP - Disk pack image file
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package disk

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Words are stored in the image least significant byte first.
const WordBytes = 4

var (
	ErrNotAttached = errors.New("disk not attached")
	ErrReadOnly    = errors.New("disk is read only")
)

// Image file context.
type Store struct {
	file     *os.File
	name     string
	readOnly bool
	err      error // Last I/O error
}

// Open an image file, created if it does not exist and not read only.
func Open(name string, readOnly bool) (*Store, error) {
	var file *os.File
	var err error
	if readOnly {
		file, err = os.Open(name)
	} else {
		file, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open disk %s", name)
	}
	return &Store{file: file, name: name, readOnly: readOnly}, nil
}

// Return name of attached file.
func (s *Store) Name() string {
	return s.name
}

// Return true if opened read only.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Return size of image in bytes.
func (s *Store) Size() (int64, error) {
	if s.file == nil {
		return 0, ErrNotAttached
	}
	info, err := s.file.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", s.name)
	}
	return info.Size(), nil
}

// Read len(buf) words starting at word offset off. Words past end of
// file read as zero.
func (s *Store) ReadWords(off int64, buf []uint32) error {
	if s.file == nil {
		return ErrNotAttached
	}
	data := make([]byte, len(buf)*WordBytes)
	n, err := s.file.ReadAt(data, off*WordBytes)
	if err != nil && err != io.EOF {
		s.err = errors.Wrapf(err, "read %s at word %d", s.name, off)
		return s.err
	}
	for i := n; i < len(data); i++ {
		data[i] = 0
	}
	for i := range buf {
		buf[i] = binary.LittleEndian.Uint32(data[i*WordBytes:])
	}
	return nil
}

// Write buf at word offset off.
func (s *Store) WriteWords(off int64, buf []uint32) error {
	if s.file == nil {
		return ErrNotAttached
	}
	if s.readOnly {
		return ErrReadOnly
	}
	data := make([]byte, len(buf)*WordBytes)
	for i, w := range buf {
		binary.LittleEndian.PutUint32(data[i*WordBytes:], w)
	}
	_, err := s.file.WriteAt(data, off*WordBytes)
	if err != nil {
		s.err = errors.Wrapf(err, "write %s at word %d", s.name, off)
		return s.err
	}
	return nil
}

// Return last I/O error.
func (s *Store) Error() error {
	return s.err
}

// Clear I/O error.
func (s *Store) ClearError() {
	s.err = nil
}

// Close the image.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return errors.Wrapf(err, "close %s", s.name)
	}
	return nil
}

// Extend or truncate image to size words.
func (s *Store) Truncate(words int64) error {
	if s.file == nil {
		return ErrNotAttached
	}
	if s.readOnly {
		return ErrReadOnly
	}
	return errors.Wrapf(s.file.Truncate(words*WordBytes), "truncate %s", s.name)
}
