/*
 * Sigma DP - Status and sense
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
	dev "github.com/rcornwell/sigmadp/emu/device"
)

// Status flags register.
const (
	flagWCHK  uint32 = 0x01       // Write check error
	flagDPE   uint32 = 0x02       // Data parity error
	flagSNZ   uint32 = 0x04       // Sector not zero
	flagEOC   uint32 = 0x08       // End of cylinder
	flagIVA   uint32 = 0x10       // Invalid address
	flagPGE   uint32 = 0x20       // Programming error
	flagWPE   uint32 = 0x40       // Write protect error
	flagAIM   uint32 = 0x80       // Arm in motion
	flagVDiff        = 16         // Cylinder difference position
	flagMDiff uint32 = 0xffff     // Cylinder difference mask
	flagDiff  uint32 = 0xffff0000 // Cylinder difference field
)

// Place masked flags into a sense byte.
type senseEntry struct {
	byte int    // Sense byte
	mask uint32 // Flags to copy
	from int    // Shift flags right by
	to   int    // Shift into byte by
}

var sense10B = []senseEntry{
	{7, 0x00ff0000, 16, 0},
	{8, flagWCHK, 0, 6},
	{8, flagSNZ, 2, 2},
	{9, 0x01000000, 24, 0},
}

var sense16B = []senseEntry{
	{8, flagWCHK, 0, 7},
	{8, flagEOC, 3, 3},
	{8, flagAIM, 7, 2},
	{14, 0xff000000, 24, 0},
	{15, 0x00ff0000, 16, 0},
}

// Merge status flags into sense bytes.
func encodeSense(family Family, flags uint32, c []uint8) {
	table := sense16B
	if family.Is10B() {
		table = sense10B
	}
	for _, ent := range table {
		if (flags & ent.mask) != 0 {
			data := uint8((flags & ent.mask) >> ent.from)
			c[ent.byte] |= data << ent.to
		}
	}
}

// Build the sense bytes for unit.
func (u *Unit) senseBytes() []uint8 {
	c := u.ctl
	g := u.geometry()
	b := make([]uint8, c.family.senseLen())
	b[0] = uint8(u.addr >> 24)
	b[1] = uint8(u.addr >> 16)
	b[2] = uint8(u.addr >> 8)
	b[3] = uint8(u.addr)
	b[4] = uint8(currentSector(c.sched.Now(), c.time, g.Sectors))
	if u.seekMoving() {
		b[4] |= 0x80
	}
	if !c.family.Is10B() {
		b[5] = uint8(u.num) | g.ID
		if c.family == FamT3281 {
			b[7] = uint8(u.num)
		}
		b[10] = uint8(c.ski >> 8)
		b[11] = uint8(c.ski)
	}
	if u.seekMoving() {
		c.flags |= flagAIM
	} else {
		c.flags &^= flagAIM
	}
	encodeSense(c.family, c.flags, b)
	return b
}

// Controller busy if any drive running, device busy if drive or seek running.
func (c *Controller) tioStatus(un int) uint32 {
	stat := dev.DvsAuto
	for i := range c.family.NumDrives() {
		if c.units[i].active() {
			stat |= dev.DvsCBusy | (dev.CC2 << dev.DvtVCC)
			break
		}
	}
	u := c.units[un]
	if u.active() || u.seekActive() {
		stat |= dev.DvsDBusy | (dev.CC2 << dev.DvtVCC)
	}
	return stat
}

func (c *Controller) tdvStatus(un int) uint32 {
	onCyl := c.units[un].onCylinder()
	st := uint32(0)
	if c.family.Is10B() {
		if (c.flags & (flagIVA | flagPGE)) != 0 {
			st |= 0x20
		}
		if onCyl {
			st |= 0x04
		}
		return st
	}
	if (c.flags & flagPGE) != 0 {
		st |= 0x20
	}
	if (c.flags & flagWPE) != 0 {
		st |= 0x08
	}
	return st
}

func (c *Controller) aioStatus(un int) uint32 {
	st := uint32(0)
	if c.family.Is10B() && c.units[un].onCylinder() {
		st |= 0x04
	}
	if c.chn.CheckCtlInt(c.dva) < 0 {
		st |= 0x08
	}
	return st
}
