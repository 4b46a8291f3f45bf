/*
 * Sigma DP - Disk drive geometry
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

package modeldp

import (
	"fmt"
	"strings"
)

// Controller family.
type Family int

const (
	Fam7240 Family = iota
	Fam7270
	Fam7260
	Fam7265
	Fam7275
	FamT3281
	numFamily
)

var familyNames = [numFamily]string{"7240", "7270", "7260", "7265", "7275", "T3281"}

func (f Family) String() string {
	if f < 0 || f >= numFamily {
		return fmt.Sprintf("family(%d)", int(f))
	}
	return familyNames[f]
}

// 7240 and 7270 return 10 sense bytes, the rest 16.
func (f Family) Is10B() bool {
	return f <= Fam7270
}

// Number of drives the family supports.
func (f Family) NumDrives() int {
	if f.Is10B() {
		return 8
	}
	return 15
}

// Number of sense bytes returned.
func (f Family) senseLen() int {
	if f.Is10B() {
		return 10
	}
	return 16
}

// Number of test mode bytes accepted.
func (f Family) testLen() int {
	if f.Is10B() {
		return 1
	}
	return 2
}

// Find family by name.
func ParseFamily(name string) (Family, error) {
	name = strings.ToUpper(name)
	name = strings.TrimPrefix(name, "C")
	for i, n := range familyNames {
		if n == name || strings.TrimPrefix(n, "T") == name {
			return Family(i), nil
		}
	}
	return 0, fmt.Errorf("unknown controller type: %s", name)
}

const (
	WordsPerSector = 256 // Words in each sector
	MaxDrives      = 15  // Most drives on any controller
	ctlUnit        = 0xf // Controller pseudo unit
	numUnits       = 16  // Drives plus controller
)

// Disk drive type.
type Geometry struct {
	Name    string // Drive type name
	Cyl     int    // Number of cylinders
	Heads   int    // Number of heads
	Sectors int    // Sectors per track
	Family  Family // Controller family drive attaches to
	ID      uint8  // Drive id returned in sense
}

// Entries of a family are in order of increasing capacity.
var geometries = []Geometry{
	{Name: "7242", Cyl: 203, Heads: 20, Sectors: 6, Family: Fam7240, ID: 0},
	{Name: "7261", Cyl: 203, Heads: 20, Sectors: 11, Family: Fam7260, ID: 5 << 5},
	{Name: "7271", Cyl: 406, Heads: 20, Sectors: 6, Family: Fam7270, ID: 0},
	{Name: "3288", Cyl: 822, Heads: 5, Sectors: 17, Family: FamT3281, ID: 0},
	{Name: "7276", Cyl: 411, Heads: 19, Sectors: 11, Family: Fam7275, ID: 7 << 5},
	{Name: "7266", Cyl: 411, Heads: 20, Sectors: 11, Family: Fam7265, ID: 6 << 5},
	{Name: "3282", Cyl: 815, Heads: 19, Sectors: 11, Family: FamT3281, ID: 0},
	{Name: "3283", Cyl: 815, Heads: 19, Sectors: 17, Family: FamT3281, ID: 0},
}

// Capacity of drive in words.
func (g *Geometry) Capacity() int64 {
	return int64(g.Cyl) * int64(g.Heads) * int64(g.Sectors) * WordsPerSector
}

// Return number of geometry entries.
func NumDriveTypes() int {
	return len(geometries)
}

// Return geometry entry by index.
func DriveType(idx int) *Geometry {
	if idx < 0 || idx >= len(geometries) {
		return nil
	}
	return &geometries[idx]
}

// Find drive type by name.
func LookupDrive(name string) (int, error) {
	name = strings.ToUpper(name)
	for i := range geometries {
		if geometries[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown drive type: %s", name)
}

// First drive type of family.
func firstDrive(f Family) int {
	for i := range geometries {
		if geometries[i].Family == f {
			return i
		}
	}
	return -1
}

// Smallest drive of family able to hold size bytes, -1 if none.
func sizeDrive(f Family, size int64) int {
	for i := range geometries {
		if geometries[i].Family == f && size <= geometries[i].Capacity()*4 {
			return i
		}
	}
	return -1
}
