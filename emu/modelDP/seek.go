/*
 * Sigma DP - Seek completion
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

// Seek timer states.
const (
	seekPlain = 0x00 // Seek, no interrupt
	seekInt   = 0x80 // Seek, interrupt when done
	seekWait  = 0x01 // Seek done, waiting to interrupt
)

// Read target address and start seek.
func (u *Unit) seek() (bool, error) {
	c := u.ctl
	dva := u.dva()
	var b [4]uint8
	i := 0
	st := dev.ChsOK
	for i < 4 && st != dev.ChsZBC {
		b[i], st = c.chn.ReadByte(dva)
		if st.IsError() {
			return true, u.chanErr(st)
		}
		i++
	}
	da := DiskAddr(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
	if (b[0] & 0xfc) != 0 {
		c.flags |= flagPGE
	}
	if (i != 4 || st != dev.ChsZBC) && c.chn.SetFlag(dva, dev.ChfLNTE) {
		c.flags |= flagPGE
		return true, nil
	}
	if i < 4 {
		c.chn.UnusualEnd(dva)
		return true, nil
	}
	u.startSeek(da, da.Cyl())
	return false, nil
}

// Move arm to cylinder, recalibrate uses cylinder 0.
func (u *Unit) startSeek(da DiskAddr, cyl int) {
	c := u.ctl
	diff := u.addr.Cyl() - cyl
	if diff < 0 {
		diff = -diff
	}
	c.flags = (c.flags &^ flagDiff) | ((uint32(diff) & flagMDiff) << flagVDiff)
	if diff == 0 {
		diff = 1
	}
	u.addr = da
	u.activateSeek(diff * c.stime)
	if c.chn.TestCmdFlag(u.dva(), dev.CmfCC) {
		u.seekState = seekPlain
	} else {
		u.seekState = int(u.cmd) & seekInt
	}
	c.debugf(debugSeek, "unit %d seek to %s time %d state %02x", u.num, da, diff*c.stime, u.seekState)
}

// Seek timer expired.
func (u *Unit) seekService(_ int) {
	c := u.ctl
	if u.seekState == seekPlain {
		return
	}
	if c.chn.CheckCtlInt(c.dva) >= 0 {
		u.activateSeek(c.time * u.geometry().Sectors)
		u.seekState = seekWait
		return
	}
	c.setSeekInt(u.num)
}
