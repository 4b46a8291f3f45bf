/*
 * Sigma DP - Disk image operations
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

package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	modeldp "github.com/rcornwell/sigmadp/emu/modelDP"
	"github.com/rcornwell/sigmadp/util/disk"
	"github.com/rcornwell/sigmadp/util/hex"
)

// Words dumped on one line.
const dumpWidth = 8

func lookupType(name string) (*modeldp.Geometry, error) {
	if name == "" {
		return nil, errors.New("drive type required, use --type")
	}
	idx, err := modeldp.LookupDrive(name)
	if err != nil {
		return nil, err
	}
	return modeldp.DriveType(idx), nil
}

// Drive types an image of size bytes fits exactly or within.
func candidates(size int64) (exact []string, fits []string) {
	for i := range modeldp.NumDriveTypes() {
		g := modeldp.DriveType(i)
		capacity := g.Capacity() * disk.WordBytes
		switch {
		case size == capacity:
			exact = append(exact, g.Name)
		case size < capacity:
			fits = append(fits, g.Name)
		}
	}
	return exact, fits
}

// Write description of image.
func imageInfo(w io.Writer, name string) error {
	store, err := disk.Open(name, true)
	if err != nil {
		return err
	}
	defer store.Close()
	size, err := store.Size()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d bytes, %d sectors\n", name, size, size/(modeldp.WordsPerSector*disk.WordBytes))
	exact, fits := candidates(size)
	for _, n := range exact {
		fmt.Fprintf(w, "  exact size of %s\n", n)
	}
	for _, n := range fits {
		fmt.Fprintf(w, "  fits on %s\n", n)
	}
	if len(exact) == 0 && len(fits) == 0 {
		fmt.Fprintln(w, "  larger than any drive")
	}
	return nil
}

// Create zero filled image of drive capacity.
func createImage(name string, g *modeldp.Geometry) error {
	store, err := disk.Open(name, false)
	if err != nil {
		return err
	}
	err = store.Truncate(g.Capacity())
	if cerr := store.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "create %s image", g.Name)
}

// Hex dump one sector.
func dumpSector(w io.Writer, name string, g *modeldp.Geometry, addr modeldp.DiskAddr) error {
	if !addr.Valid(g) {
		return errors.Errorf("address %s outside %s", addr, g.Name)
	}
	store, err := disk.Open(name, true)
	if err != nil {
		return err
	}
	defer store.Close()

	buf := make([]uint32, modeldp.WordsPerSector)
	err = store.ReadWords(addr.Offset(g), buf)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "sector %s\n", addr)
	for i := 0; i < len(buf); i += dumpWidth {
		fmt.Fprintln(w, hex.Line(uint32(i), 3, buf[i:i+dumpWidth]))
	}
	return nil
}

// Stamp the first two words of each sector with its address and sector
// number. cyls limits the cylinders done, 0 for all.
func fillImage(name string, g *modeldp.Geometry, cyls int) (int, error) {
	if cyls <= 0 || cyls > g.Cyl {
		cyls = g.Cyl
	}
	store, err := disk.Open(name, false)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	buf := make([]uint32, modeldp.WordsPerSector)
	count := 0
	for cyl := range cyls {
		addr := modeldp.MakeAddr(cyl, 0, 0)
		for {
			off := addr.Offset(g)
			if err := store.ReadWords(off, buf); err != nil {
				return count, err
			}
			buf[0] = uint32(addr)
			buf[1] = uint32(off / modeldp.WordsPerSector)
			if err := store.WriteWords(off, buf); err != nil {
				return count, err
			}
			count++
			var wrap bool
			addr, wrap = addr.Increment(g)
			if wrap {
				break
			}
		}
	}
	return count, nil
}
