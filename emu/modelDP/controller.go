/*
 * Sigma DP - Disk pack controller
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

	dev "github.com/rcornwell/sigmadp/emu/device"
	"github.com/rcornwell/sigmadp/util/debug"
	"github.com/rcornwell/sigmadp/util/disk"
)

// Channel services used by the controller.
type Channel interface {
	GetCommand(dva uint16) (uint8, dev.ChanStatus)
	ReadByte(dva uint16) (uint8, dev.ChanStatus)
	WriteByte(dva uint16, data uint8) dev.ChanStatus
	ReadWord(dva uint16) (uint32, dev.ChanStatus)
	WriteWord(dva uint16, word uint32) dev.ChanStatus
	End(dva uint16) dev.ChanStatus
	UnusualEnd(dva uint16)
	SetFlag(dva uint16, flag uint32) bool
	TestCmdFlag(dva uint16, flag uint32) bool
	CheckCtlInt(dva uint16) int
	ClearCtlInt(dva uint16) int
	SetDevInt(dva uint16)
	ClearDevInt(dva uint16)
	ResetDevice(dva uint16)
}

// Event scheduler.
type Scheduler interface {
	AddEvent(owner any, cb func(iarg int), time int, iarg int)
	CancelEvent(owner any, iarg int)
	IsActive(owner any, iarg int) bool
	Now() uint64
}

// Backing image of a drive.
type Storage interface {
	ReadWords(off int64, buf []uint32) error
	WriteWords(off int64, buf []uint32) error
	ClearError()
	ReadOnly() bool
	Size() (int64, error)
	Close() error
}

const (
	// Debug options.
	debugCmd = 1 << iota
	debugData
	debugDetail
	debugSeek
)

var debugOption = map[string]int{
	"CMD":    debugCmd,
	"DATA":   debugData,
	"DETAIL": debugDetail,
	"SEEK":   debugSeek,
}

// Default timing.
const (
	DefaultTime    = 1  // Inter word time
	DefaultSTime   = 20 // Inter track time
	DefaultCtlTime = 5  // Channel control time
)

// Opens image files, replaced in tests.
var openStore = func(name string, readOnly bool) (Storage, error) {
	store, err := disk.Open(name, readOnly)
	if err != nil {
		return nil, err
	}
	return store, nil
}

type Controller struct {
	dva      uint16
	family   Family
	time     int    // Inter word time
	stime    int    // Inter track time
	ctlTime  int    // Channel control time
	flags    uint32 // Status flags
	ski      uint32 // Seek interrupts
	test     uint32 // Test mode pattern
	stopIOE  bool   // Stop on I/O error
	stopErr  error  // Pending stop
	units    [numUnits]*Unit
	buf      [WordsPerSector]uint32
	chn      Channel
	sched    Scheduler
	debugMsk int
}

// Create a controller of family at base address dva.
func NewController(dva uint16, family Family) *Controller {
	c := &Controller{
		dva:     (dva &^ dev.DvaMUnit) | dev.DvaMulti,
		time:    DefaultTime,
		stime:   DefaultSTime,
		ctlTime: DefaultCtlTime,
	}
	for i := range c.units {
		c.units[i] = &Unit{ctl: c, num: i}
	}
	c.setFamily(family)
	return c
}

// Attach controller to channel and scheduler.
func (c *Controller) Connect(chn Channel, sched Scheduler) {
	c.chn = chn
	c.sched = sched
}

func (c *Controller) Addr() uint16 {
	return c.dva
}

func (c *Controller) Family() Family {
	return c.family
}

// Set timing, values less than one are ignored.
func (c *Controller) SetTiming(time, stime, ctlTime int) {
	if time > 0 {
		c.time = time
	}
	if stime > 0 {
		c.stime = stime
	}
	if ctlTime > 0 {
		c.ctlTime = ctlTime
	}
}

func (c *Controller) SetStopIOE(stop bool) {
	c.stopIOE = stop
}

// Get unit by number.
func (c *Controller) Unit(un int) (*Unit, error) {
	if un < 0 || un >= numUnits {
		return nil, fmt.Errorf("unit %d: %w", un, dev.ErrNoDevice)
	}
	return c.units[un], nil
}

// Unit accepts channel operations.
func (c *Controller) unitExists(un int) bool {
	if un < c.family.NumDrives() && !c.units[un].disabled {
		return true
	}
	return un == ctlUnit && c.family == FamT3281
}

// Record error when stopping on I/O errors.
func (c *Controller) stop(err error) {
	if c.stopIOE && c.stopErr == nil {
		c.stopErr = err
	}
}

// Return and clear pending stop error.
func (c *Controller) TakeError() error {
	err := c.stopErr
	c.stopErr = nil
	return err
}

func (c *Controller) debugf(level int, format string, a ...interface{}) {
	debug.DebugDevf(c.dva, c.debugMsk, level, format, a...)
}

// Reset controller and all drives.
func (c *Controller) Reset() {
	for _, u := range c.units {
		if c.sched != nil {
			u.cancel()
			u.cancelSeek()
		}
		u.addr = 0
		u.cmd = 0
		u.seekState = 0
	}
	c.flags = 0
	c.ski = 0
	c.test = 0
	if c.chn != nil {
		c.chn.ResetDevice(c.dva)
	}
}

// Enable debug option.
func (c *Controller) Debug(opt string) error {
	flag, err := debug.GetOption("DP", debugOption, opt)
	if err != nil {
		return err
	}
	c.debugMsk |= flag
	return nil
}

func (c *Controller) anyAttached() bool {
	for _, u := range c.units {
		if u.attached() {
			return true
		}
	}
	return false
}

func (c *Controller) setFamily(family Family) {
	c.family = family
	drive := firstDrive(family)
	for i, u := range c.units {
		u.drive = drive
		u.disabled = i >= family.NumDrives() && i != ctlUnit
		if family != FamT3281 {
			u.autosize = false
		}
	}
}

// Change controller type, no drive may be attached.
func (c *Controller) SetType(family Family) error {
	if family < 0 || family >= numFamily {
		return fmt.Errorf("controller type %d: %w", family, dev.ErrInternal)
	}
	if c.anyAttached() {
		return fmt.Errorf("controller %03x: %w", c.dva, dev.ErrAttached)
	}
	c.setFamily(family)
	return nil
}

// Change drive type, only T3281 drives may be changed.
func (c *Controller) SetDriveType(un int, name string) error {
	u, err := c.drive(un)
	if err != nil {
		return err
	}
	idx, err := LookupDrive(name)
	if err != nil {
		return err
	}
	if c.family != FamT3281 || geometries[idx].Family != FamT3281 {
		return fmt.Errorf("drive type %s on %s: %w", name, c.family, dev.ErrNoFunc)
	}
	if u.attached() {
		return fmt.Errorf("unit %d: %w", un, dev.ErrAttached)
	}
	u.drive = idx
	u.autosize = false
	return nil
}

// Set autosize, only T3281 drives may be sized.
func (c *Controller) SetAutosize(un int, on bool) error {
	u, err := c.drive(un)
	if err != nil {
		return err
	}
	if c.family != FamT3281 {
		return fmt.Errorf("autosize on %s: %w", c.family, dev.ErrNoFunc)
	}
	if u.attached() {
		return fmt.Errorf("unit %d: %w", un, dev.ErrAttached)
	}
	u.autosize = on
	return nil
}

// Get a real drive.
func (c *Controller) drive(un int) (*Unit, error) {
	if un < 0 || un >= c.family.NumDrives() || c.units[un].disabled {
		return nil, fmt.Errorf("unit %d: %w", un, dev.ErrNoDevice)
	}
	return c.units[un], nil
}

// Attach image file to drive.
func (c *Controller) Attach(un int, file string, readOnly bool) error {
	u, err := c.drive(un)
	if err != nil {
		return err
	}
	if u.attached() {
		return fmt.Errorf("unit %d: %w", un, dev.ErrAttached)
	}
	store, err := openStore(file, readOnly)
	if err != nil {
		return err
	}
	if u.autosize && c.family == FamT3281 {
		size, err := store.Size()
		if err == nil && size > 0 {
			if idx := sizeDrive(FamT3281, size); idx >= 0 {
				u.drive = idx
			}
		}
	}
	u.store = store
	u.readOnly = readOnly
	return nil
}

// Detach image from drive.
func (c *Controller) Detach(un int) error {
	u, err := c.drive(un)
	if err != nil {
		return err
	}
	if !u.attached() {
		return nil
	}
	if c.sched != nil {
		u.cancel()
		u.cancelSeek()
	}
	err = u.store.Close()
	u.store = nil
	return err
}

// Detach every drive, returns first error.
func (c *Controller) DetachAll() error {
	var first error
	for i, u := range c.units {
		if !u.attached() {
			continue
		}
		if err := c.Detach(i); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Set current address of drive, it must be idle.
func (c *Controller) SetAddr(un int, addr DiskAddr) error {
	u, err := c.drive(un)
	if err != nil {
		return err
	}
	if c.sched != nil && (u.active() || u.seekActive()) {
		return fmt.Errorf("unit %d busy", un)
	}
	u.addr = addr
	return nil
}

// Set or clear write lock.
func (c *Controller) SetWriteLock(un int, lock bool) error {
	u, err := c.drive(un)
	if err != nil {
		return err
	}
	u.readOnly = lock
	return nil
}

// Describe controller and drives.
func (c *Controller) Show() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%03x: DP type=%s time=%d stime=%d ctltime=%d", c.dva, c.family, c.time, c.stime, c.ctlTime)
	if c.stopIOE {
		sb.WriteString(" stopioe")
	}
	fmt.Fprintf(&sb, "\n     FLAGS=%02x DIFF=%d SKI=%04x TEST=%04x", c.flags&^flagDiff,
		(c.flags&flagDiff)>>flagVDiff, c.ski, c.test)
	for i := range c.family.NumDrives() {
		sb.WriteString("\n")
		sb.WriteString(c.units[i].show())
	}
	return sb.String()
}

func (u *Unit) show() string {
	str := fmt.Sprintf("%03x: %s", u.dva(), u.geometry().Name)
	if u.disabled {
		return str + " disabled"
	}
	str += " addr=" + u.addr.String()
	if u.autosize {
		str += " autosize"
	}
	if u.readOnly {
		str += " ro"
	}
	if u.store != nil {
		if name, ok := u.store.(interface{ Name() string }); ok {
			str += " " + name.Name()
		} else {
			str += " attached"
		}
	} else {
		str += " not attached"
	}
	return str
}
