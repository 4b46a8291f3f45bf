/*
 * Sigma DP - Disk address
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

import "fmt"

// Packed cylinder, head and sector. Bits above the cylinder field are
// kept so sense can return them.
type DiskAddr uint32

const (
	addrVCyl  = 16
	addrMCyl  = 0x3ff
	addrVHead = 8
	addrMHead = 0x1f
	addrVSec  = 0
	addrMSec  = 0x1f
)

// Build address from parts.
func MakeAddr(cyl, head, sec int) DiskAddr {
	return DiskAddr((uint32(cyl)&addrMCyl)<<addrVCyl |
		(uint32(head)&addrMHead)<<addrVHead |
		(uint32(sec)&addrMSec)<<addrVSec)
}

func (a DiskAddr) Cyl() int {
	return int((uint32(a) >> addrVCyl) & addrMCyl)
}

func (a DiskAddr) Head() int {
	return int((uint32(a) >> addrVHead) & addrMHead)
}

func (a DiskAddr) Sector() int {
	return int((uint32(a) >> addrVSec) & addrMSec)
}

func (a DiskAddr) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Cyl(), a.Head(), a.Sector())
}

// Check address is inside drive.
func (a DiskAddr) Valid(g *Geometry) bool {
	return a.Cyl() < g.Cyl && a.Head() < g.Heads && a.Sector() < g.Sectors
}

// Word offset of sector in image.
func (a DiskAddr) Offset(g *Geometry) int64 {
	sec := (int64(a.Cyl())*int64(g.Heads)+int64(a.Head()))*int64(g.Sectors) + int64(a.Sector())
	return sec * WordsPerSector
}

// Advance to next sector. The cylinder never changes, true is returned
// when the address wraps back to head 0 sector 0.
func (a DiskAddr) Increment(g *Geometry) (DiskAddr, bool) {
	cyl := a.Cyl()
	head := a.Head()
	sec := a.Sector() + 1
	if sec >= g.Sectors {
		sec = 0
		head++
		if head >= g.Heads {
			head = 0
		}
	}
	return MakeAddr(cyl, head, sec), head == 0 && sec == 0
}

// Sector currently under the heads.
func currentSector(now uint64, wordTime int, sectors int) int {
	if wordTime < 1 {
		wordTime = 1
	}
	return int((now / uint64(wordTime*WordsPerSector)) % uint64(sectors))
}
