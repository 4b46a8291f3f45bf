/*
 * Sigma DP - Unit execution
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
	"log/slog"

	dev "github.com/rcornwell/sigmadp/emu/device"
	"github.com/rcornwell/sigmadp/util/disk"
)

// Event arguments for the two timers of a drive.
const (
	mainEvent = 0
	seekEvent = 1
)

// One drive, or the controller pseudo unit.
type Unit struct {
	ctl       *Controller
	num       int      // Unit number
	drive     int      // Index of drive type
	addr      DiskAddr // Current disk address
	cmd       Command  // Current command or state
	seekState int      // State of seek timer
	store     Storage  // Backing image, nil if not attached
	readOnly  bool     // Write locked
	disabled  bool     // Drive not present
	autosize  bool     // Pick drive type from image size
}

// Address of unit on channel.
func (u *Unit) dva() uint16 {
	return u.ctl.dva | uint16(u.num)
}

func (u *Unit) geometry() *Geometry {
	return &geometries[u.drive]
}

// Scheduler helpers.

func (u *Unit) active() bool {
	return u.ctl.sched.IsActive(u, mainEvent)
}

func (u *Unit) seekActive() bool {
	return u.ctl.sched.IsActive(u, seekEvent)
}

// Schedule unit if not already scheduled.
func (u *Unit) activate(t int) {
	if !u.active() {
		u.ctl.sched.AddEvent(u, u.service, t, mainEvent)
	}
}

// Schedule unit replacing any pending event.
func (u *Unit) activateAbs(t int) {
	u.ctl.sched.CancelEvent(u, mainEvent)
	u.ctl.sched.AddEvent(u, u.service, t, mainEvent)
}

func (u *Unit) activateSeek(t int) {
	if !u.seekActive() {
		u.ctl.sched.AddEvent(u, u.seekService, t, seekEvent)
	}
}

func (u *Unit) cancel() {
	u.ctl.sched.CancelEvent(u, mainEvent)
}

func (u *Unit) cancelSeek() {
	u.ctl.sched.CancelEvent(u, seekEvent)
}

// Heads are settled.
func (u *Unit) onCylinder() bool {
	return !u.seekActive() || u.seekState == seekWait
}

// Arm is moving.
func (u *Unit) seekMoving() bool {
	return u.seekActive() && u.seekState != seekWait
}

func (u *Unit) attached() bool {
	return u.store != nil
}

// Advance disk address one sector, true if it wrapped the cylinder.
func (u *Unit) incAddr() bool {
	var wrap bool
	u.addr, wrap = u.addr.Increment(u.geometry())
	return wrap
}

// Main unit timer.
func (u *Unit) service(_ int) {
	err := u.step()
	if err != nil {
		u.ctl.stop(err)
	}
}

// Run one step of the current command.
func (u *Unit) step() error {
	c := u.ctl
	dva := u.dva()
	switch u.cmd {
	case stateInit:
		return u.initCommand()

	case stateEnd:
		st := c.chn.End(dva)
		if st.IsError() {
			return u.chanErr(st)
		}
		if st == dev.ChsCCH {
			u.cmd = stateInit
			u.activate(c.ctlTime)
		}
		return nil
	}

	done, err := u.execute()
	if done || err != nil {
		return err
	}
	u.cmd = stateEnd
	u.activate(c.ctlTime)
	return nil
}

// Fetch and validate next command, then wait for it to start.
func (u *Unit) initCommand() error {
	c := u.ctl
	dva := u.dva()
	order, st := c.chn.GetCommand(dva)
	if st.IsError() {
		return u.chanErr(st)
	}
	c.flags = 0
	cmd := Command(order)
	if !cmd.Legal(c.family) || (u.num == ctlUnit && !cmd.CtlValid()) {
		c.debugf(debugCmd, "unit %d illegal command %02x", u.num, order)
		c.flags |= flagPGE
		c.chn.UnusualEnd(dva)
		return nil
	}
	c.debugf(debugCmd, "unit %d command %s at %s", u.num, cmd, u.addr)
	u.cmd = cmd
	if cmd.Fast() {
		u.activateAbs(c.ctlTime)
	} else {
		g := u.geometry()
		t := u.addr.Sector() - currentSector(c.sched.Now(), c.time, g.Sectors)
		if t < 0 {
			t += g.Sectors
		}
		u.activateAbs(t * c.time * WordsPerSector)
	}
	u.cancelSeek()
	return nil
}

// Channel reported error, terminate.
func (u *Unit) chanErr(st dev.ChanStatus) error {
	u.ctl.debugf(debugCmd, "unit %d channel error %s", u.num, st)
	u.ctl.chn.UnusualEnd(u.dva())
	return nil
}

// Flag error and terminate.
func (u *Unit) uend(flag uint32) (bool, error) {
	u.ctl.flags |= flag
	u.ctl.chn.UnusualEnd(u.dva())
	return true, nil
}

// Execute command body. Returns true if END should not be scheduled.
func (u *Unit) execute() (bool, error) {
	switch u.cmd {
	case cmdSeek, cmdSeekI:
		return u.seek()

	case cmdRecal, cmdRecalI:
		u.startSeek(0, 0)

	case cmdSense:
		return u.sense()

	case cmdWrite:
		return u.write()

	case cmdWHdr:
		return u.writeHeader()

	case cmdCheck:
		return u.writeCheck()

	case cmdRead:
		return u.read()

	case cmdRHdr:
		return u.readHeader()

	case cmdTest:
		return u.testMode()

	case cmdRsrv, cmdRls, cmdRlsA, cmdRdEES, cmdCRIOF, cmdCRION:

	default:
		return true, fmt.Errorf("unit %d state %s: %w", u.num, u.cmd, dev.ErrInternal)
	}
	return false, nil
}

// Send sense bytes.
func (u *Unit) sense() (bool, error) {
	c := u.ctl
	dva := u.dva()
	b := u.senseBytes()
	i := 0
	st := dev.ChsOK
	for i < len(b) && st != dev.ChsZBC {
		st = c.chn.WriteByte(dva, b[i])
		if st.IsError() {
			return true, u.chanErr(st)
		}
		i++
	}
	if i != len(b) || st != dev.ChsZBC {
		c.flags |= flagPGE
		if c.chn.SetFlag(dva, dev.ChfLNTE) {
			return true, nil
		}
	}
	return false, nil
}

// Load test mode pattern.
func (u *Unit) testMode() (bool, error) {
	c := u.ctl
	dva := u.dva()
	c.test = 0
	st := dev.ChsOK
	for i := range c.family.testLen() {
		data := uint8(0)
		if st != dev.ChsZBC {
			data, st = c.chn.ReadByte(dva)
			if st.IsError() {
				return true, u.chanErr(st)
			}
		}
		c.test |= uint32(data) << (i * 8)
	}
	return false, nil
}

// Common guard for data commands.
func (u *Unit) checkAddr() (int64, bool) {
	g := u.geometry()
	if !u.addr.Valid(g) {
		return 0, false
	}
	return u.addr.Offset(g), true
}

func (u *Unit) writeLocked() bool {
	return u.readOnly || (u.store != nil && u.store.ReadOnly())
}

func (u *Unit) write() (bool, error) {
	c := u.ctl
	dva := u.dva()
	if u.writeLocked() {
		return u.uend(flagWPE)
	}
	off, ok := u.checkAddr()
	if !ok {
		return u.uend(flagPGE)
	}
	st := dev.ChsOK
	for i := range WordsPerSector {
		word := uint32(0)
		if st != dev.ChsZBC {
			word, st = c.chn.ReadWord(dva)
			if st.IsError() {
				u.incAddr()
				return true, u.chanErr(st)
			}
		}
		c.buf[i] = word
	}
	if !u.attached() {
		return true, u.ioErr(disk.ErrNotAttached, off)
	}
	if err := u.store.WriteWords(off, c.buf[:]); err != nil {
		return true, u.ioErr(err, off)
	}
	c.debugf(debugData, "unit %d write %s", u.num, u.addr)
	return u.endSector(WordsPerSector, WordsPerSector, st), nil
}

// Header bytes are accepted and discarded.
func (u *Unit) writeHeader() (bool, error) {
	c := u.ctl
	dva := u.dva()
	if u.writeLocked() {
		return u.uend(flagWPE)
	}
	if _, ok := u.checkAddr(); !ok {
		return u.uend(flagPGE)
	}
	if u.addr.Sector() != 0 {
		return u.uend(flagSNZ)
	}
	i := 0
	st := dev.ChsOK
	for i < 8 && st != dev.ChsZBC {
		_, st = c.chn.ReadByte(dva)
		if st.IsError() {
			u.incAddr()
			return true, u.chanErr(st)
		}
		i++
	}
	return u.endSector(i, 8, st), nil
}

// Compare memory against sector byte by byte.
func (u *Unit) writeCheck() (bool, error) {
	c := u.ctl
	dva := u.dva()
	off, ok := u.checkAddr()
	if !ok {
		return u.uend(flagPGE)
	}
	if err := u.readSector(off); err != nil {
		return true, err
	}
	i := 0
	st := dev.ChsOK
	for i < WordsPerSector*4 && st != dev.ChsZBC {
		var data uint8
		data, st = c.chn.ReadByte(dva)
		if st.IsError() {
			u.incAddr()
			return true, u.chanErr(st)
		}
		stored := uint8(c.buf[i>>2] >> (24 - (i&3)*8))
		if data != stored {
			c.debugf(debugData, "unit %d check error %s byte %d", u.num, u.addr, i)
			u.incAddr()
			return u.uend(flagWCHK)
		}
		i++
	}
	return u.endSector(i, WordsPerSector*4, st), nil
}

func (u *Unit) read() (bool, error) {
	c := u.ctl
	dva := u.dva()
	off, ok := u.checkAddr()
	if !ok {
		return u.uend(flagPGE)
	}
	if err := u.readSector(off); err != nil {
		return true, err
	}
	c.debugf(debugData, "unit %d read %s", u.num, u.addr)
	i := 0
	st := dev.ChsOK
	for i < WordsPerSector && st != dev.ChsZBC {
		st = c.chn.WriteWord(dva, c.buf[i])
		if st.IsError() {
			u.incAddr()
			return true, u.chanErr(st)
		}
		i++
	}
	return u.endSector(i, WordsPerSector, st), nil
}

// Header is built from current address.
func (u *Unit) readHeader() (bool, error) {
	c := u.ctl
	dva := u.dva()
	if _, ok := u.checkAddr(); !ok {
		return u.uend(flagPGE)
	}
	cyl := u.addr.Cyl()
	hdr := [8]uint8{0, uint8(cyl >> 8), uint8(cyl), uint8(u.addr.Head()), uint8(u.addr.Sector()), 0, 0, 0}
	i := 0
	st := dev.ChsOK
	for i < len(hdr) && st != dev.ChsZBC {
		st = c.chn.WriteByte(dva, hdr[i])
		if st.IsError() {
			u.incAddr()
			return true, u.chanErr(st)
		}
		i++
	}
	return u.endSector(i, 8, st), nil
}

// Read sector into controller buffer.
func (u *Unit) readSector(off int64) error {
	if !u.attached() {
		return u.ioErr(disk.ErrNotAttached, off)
	}
	if err := u.store.ReadWords(off, u.ctl.buf[:]); err != nil {
		return u.ioErr(err, off)
	}
	return nil
}

// Backing store failed, report and terminate transfer.
func (u *Unit) ioErr(err error, off int64) error {
	c := u.ctl
	dva := u.dva()
	slog.Error("DP I/O error", "device", fmt.Sprintf("%03x", dva), "addr", u.addr.String(),
		"offset", off, "error", err)
	if u.store != nil {
		u.store.ClearError()
	}
	c.flags |= flagDPE
	if !c.chn.SetFlag(dva, dev.ChfXMDE) {
		c.chn.UnusualEnd(dva)
	}
	return fmt.Errorf("device %03x: %w", dva, err)
}

// Finish a sector. Returns true if command continues with the next
// sector or was terminated, false when END should be scheduled.
func (u *Unit) endSector(lnt, exp int, st dev.ChanStatus) bool {
	c := u.ctl
	dva := u.dva()
	if st != dev.ChsZBC {
		if u.incAddr() {
			c.flags |= flagIVA | flagEOC
			c.chn.UnusualEnd(dva)
		} else {
			u.activate(c.time * 16)
		}
		return true
	}
	u.incAddr()
	if lnt != exp {
		if exp == 8 {
			c.flags |= flagPGE
		}
		if c.chn.SetFlag(dva, dev.ChfLNTE) {
			return true
		}
	}
	return false
}
