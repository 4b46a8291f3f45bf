/*
 * Sigma DP - I/O processor
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

package syschannel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	config "github.com/rcornwell/sigmadp/config/configparser"
	dev "github.com/rcornwell/sigmadp/emu/device"
	mem "github.com/rcornwell/sigmadp/emu/memory"
	"github.com/rcornwell/sigmadp/util/debug"
)

var (
	IrqPending bool // Some device has an interrupt pending

	// Hold information about channels.
	chanUnit [MaxChan]*chanDev

	memory *mem.Memory
)

// Set memory channels transfer to.
func InitializeChannels(m *mem.Memory) {
	memory = m
}

// Enable a channel.
func AddChannel(cNum int) error {
	if cNum < 0 || cNum >= len(chanUnit) {
		return fmt.Errorf("channel number too large: %d max: %d", cNum, len(chanUnit)-1)
	}
	if chanUnit[cNum] != nil {
		return fmt.Errorf("channel %d already defined", cNum)
	}
	chanUnit[cNum] = &chanDev{}
	return nil
}

// Remove all channels and devices.
func RemoveChannels() {
	for i := range chanUnit {
		chanUnit[i] = nil
	}
	IrqPending = false
}

// Find slot for device address, nil if none.
func findSlot(dva uint16) *chanCtl {
	ch := dev.GetChan(dva)
	if ch >= len(chanUnit) {
		return nil
	}
	cUnit := chanUnit[ch]
	if cUnit == nil {
		return nil
	}
	return cUnit.devTab[slotAddr(dva)&0xff]
}

// Return debug mask for device address.
func debugMask(dva uint16) int {
	ch := dev.GetChan(dva)
	if ch >= len(chanUnit) || chanUnit[ch] == nil {
		return 0
	}
	return chanUnit[ch].debugMsk
}

// Add a device at given address, channel is created if needed.
func AddDevice(device dev.Device, dva uint16) error {
	ch := dev.GetChan(dva)
	if ch >= len(chanUnit) {
		return fmt.Errorf("channel %d does not exist", ch)
	}
	if chanUnit[ch] == nil {
		chanUnit[ch] = &chanDev{}
	}
	base := slotAddr(dva)
	cUnit := chanUnit[ch]
	if cUnit.devTab[base&0xff] != nil {
		return fmt.Errorf("device %03x already exists", base)
	}
	cUnit.devTab[base&0xff] = &chanCtl{dev: device, dva: base, chi: -1}
	return nil
}

// Get a device pointer.
func GetDevice(dva uint16) (dev.Device, error) {
	slot := findSlot(dva)
	if slot == nil {
		return nil, fmt.Errorf("device %03x: %w", dva, dev.ErrNoDevice)
	}
	return slot.dev, nil
}

// Delete a device at a given address.
func DelDevice(dva uint16) {
	ch := dev.GetChan(dva)
	if ch < len(chanUnit) && chanUnit[ch] != nil {
		chanUnit[ch].devTab[slotAddr(dva)&0xff] = nil
	}
}

// Return addresses of all devices in channel order.
func Devices() []uint16 {
	list := []uint16{}
	for _, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}
		for _, slot := range cUnit.devTab {
			if slot != nil {
				list = append(list, slot.dva)
			}
		}
	}
	return list
}

// Enable debug option on a channel.
func Debug(cNum int, opt string) error {
	if cNum < 0 || cNum >= len(chanUnit) || chanUnit[cNum] == nil {
		return fmt.Errorf("channel %d does not exist", cNum)
	}
	flag, err := debug.GetOption("Channel", debugOption, opt)
	if err != nil {
		return err
	}
	chanUnit[cNum].debugMsk |= flag
	return nil
}

// Pass a channel instruction to the device.
func dispatch(op int, dva uint16) (uint32, *chanCtl) {
	slot := findSlot(dva)
	if slot == nil {
		return dev.DvtNoDev, nil
	}
	status, err := slot.dev.Dispatch(op, dva)
	if err != nil {
		debug.DebugChanf(dev.GetChan(dva), debugMask(dva), debugCmd, "device %03x op %d: %v", dva, op, err)
		return dev.DvtNoDev, slot
	}
	return status, slot
}

// Process SIO instruction, cmdAddr is byte address of command list.
func StartIO(dva uint16, cmdAddr uint32) uint32 {
	status, slot := dispatch(dev.OpSIO, dva)
	if slot == nil {
		return status
	}
	cc := (status >> dev.DvtVCC) & (dev.CC1 | dev.CC2)
	if cc == 0 {
		slot.clc = cmdAddr &^ 7
		slot.cmd = 0
		slot.flags = 0
		slot.count = 0
		slot.chf = 0
		slot.active = true
		debug.DebugChanf(dev.GetChan(dva), debugMask(dva), debugCmd, "SIO %03x list %06x", dva, slot.clc)
	}
	return status
}

// Handle TIO instruction.
func TestIO(dva uint16) uint32 {
	status, _ := dispatch(dev.OpTIO, dva)
	return status
}

// Handle TDV instruction.
func TestDevice(dva uint16) uint32 {
	status, _ := dispatch(dev.OpTDV, dva)
	return status
}

// Handle HIO instruction.
func HaltIO(dva uint16) uint32 {
	status, slot := dispatch(dev.OpHIO, dva)
	if slot != nil {
		slot.active = false
	}
	return status
}

// Handle AIO instruction, return address of interrupting device and its status.
func AckInterrupt() (uint16, uint32) {
	if !IrqPending {
		return dev.NoDev, dev.DvtNoDev
	}
	for _, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}
		for _, slot := range cUnit.devTab {
			if slot == nil || !slot.inp {
				continue
			}
			status, err := slot.dev.Dispatch(dev.OpAIO, slot.dva)
			if err != nil {
				return dev.NoDev, dev.DvtNoDev
			}
			dva := slot.dva
			if (dva & dev.DvaMulti) != 0 {
				dva |= uint16(status>>dev.DvtVUnit) & dev.DvaMUnit
			}
			updateIrq()
			debug.DebugChanf(dev.GetChan(dva), cUnit.debugMsk, debugInt, "AIO %03x status %08x", dva, status)
			return dva, status
		}
	}
	IrqPending = false
	return dev.NoDev, dev.DvtNoDev
}

// Recompute global interrupt pending flag.
func updateIrq() {
	for _, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}
		for _, slot := range cUnit.devTab {
			if slot != nil && slot.inp {
				IrqPending = true
				return
			}
		}
	}
	IrqPending = false
}

// Reset all channels and devices.
func ResetChannels() {
	for _, cUnit := range chanUnit {
		if cUnit == nil {
			continue
		}
		for _, slot := range cUnit.devTab {
			if slot != nil {
				slot.dev.Reset()
				resetSlot(slot)
			}
		}
	}
	IrqPending = false
}

func resetSlot(slot *chanCtl) {
	slot.clc = 0
	slot.cmd = 0
	slot.flags = 0
	slot.addr = 0
	slot.count = 0
	slot.chf = 0
	slot.chi = -1
	slot.inp = false
	slot.active = false
}

// Device routines.

// Fetch next command for device. Return order and status.
func GetCommand(dva uint16) (uint8, dev.ChanStatus) {
	slot := findSlot(dva)
	if slot == nil || !slot.active {
		return 0, dev.ChsInactive
	}
	tic := false
	for {
		word0, err0 := memory.GetWord(slot.clc)
		word1, err1 := memory.GetWord(slot.clc + 4)
		if err0 || err1 {
			slot.chf |= dev.ChfXMAE
			return 0, dev.ChsNxm
		}
		order := uint8((word0 & orderMask) >> orderShift)
		if (order & 0xf) == orderTIC {
			// Two transfers in a row are an error.
			if tic {
				slot.chf |= dev.ChfIOPE
				return 0, dev.ChsErr
			}
			tic = true
			slot.clc = (word0 & addrMask) &^ 7
			continue
		}
		slot.clc += 8
		slot.cmd = order
		loadData(slot, word0, word1)
		debug.DebugChanf(dev.GetChan(dva), debugMask(dva), debugCmd,
			"%03x cmd %02x addr %06x flags %02x count %d", dva, order, slot.addr, slot.flags, slot.count)
		return order, dev.ChsOK
	}
}

// Load address, flags and count from command doubleword.
func loadData(slot *chanCtl, word0, word1 uint32) {
	slot.addr = word0 & addrMask
	slot.flags = (word1 & flagMask) >> 24
	slot.count = word1 & countMask
	if slot.count == 0 {
		slot.count = maxCount
	}
}

// Data chain to next command, order of new command is ignored.
func dataChain(slot *chanCtl) dev.ChanStatus {
	word0, err0 := memory.GetWord(slot.clc)
	word1, err1 := memory.GetWord(slot.clc + 4)
	if err0 || err1 {
		slot.chf |= dev.ChfXMAE
		return dev.ChsNxm
	}
	if uint8((word0&orderMask)>>orderShift)&0xf == orderTIC {
		slot.clc = (word0 & addrMask) &^ 7
		word0, err0 = memory.GetWord(slot.clc)
		word1, err1 = memory.GetWord(slot.clc + 4)
		if err0 || err1 {
			slot.chf |= dev.ChfXMAE
			return dev.ChsNxm
		}
	}
	slot.clc += 8
	loadData(slot, word0, word1)
	return dev.ChsOK
}

// Account for one byte transferred. Return ZBC if this was the last byte.
func countByte(slot *chanCtl) dev.ChanStatus {
	slot.addr = (slot.addr + 1) & addrMask
	slot.count--
	if slot.count != 0 {
		return dev.ChsOK
	}
	if (slot.flags & dev.CmfDC) != 0 {
		return dataChain(slot)
	}
	return dev.ChsZBC
}

// Check slot can transfer data.
func transferSlot(dva uint16) (*chanCtl, dev.ChanStatus) {
	slot := findSlot(dva)
	if slot == nil || !slot.active {
		return nil, dev.ChsInactive
	}
	if slot.count == 0 {
		return nil, dev.ChsZBC
	}
	return slot, dev.ChsOK
}

// Read a byte from memory for device.
func ReadByte(dva uint16) (uint8, dev.ChanStatus) {
	slot, st := transferSlot(dva)
	if slot == nil {
		return 0, st
	}
	data, err := memory.GetByte(slot.addr)
	if err {
		slot.chf |= dev.ChfXMAE
		return 0, dev.ChsNxm
	}
	debug.DebugChanf(dev.GetChan(dva), debugMask(dva), debugData, "%03x read %06x %02x", dva, slot.addr, data)
	return data, countByte(slot)
}

// Write a byte to memory for device.
func WriteByte(dva uint16, data uint8) dev.ChanStatus {
	slot, st := transferSlot(dva)
	if slot == nil {
		return st
	}
	if (slot.flags & dev.CmfSKP) == 0 {
		if memory.PutByte(slot.addr, data) {
			slot.chf |= dev.ChfXMAE
			return dev.ChsNxm
		}
		debug.DebugChanf(dev.GetChan(dva), debugMask(dva), debugData, "%03x write %06x %02x", dva, slot.addr, data)
	}
	return countByte(slot)
}

// Read a word from memory, high byte first. Bytes past end of transfer are zero.
func ReadWord(dva uint16) (uint32, dev.ChanStatus) {
	word := uint32(0)
	for i := range 4 {
		data, st := ReadByte(dva)
		word |= uint32(data) << (24 - 8*i)
		if st != dev.ChsOK {
			return word, st
		}
	}
	return word, dev.ChsOK
}

// Write a word to memory, high byte first.
func WriteWord(dva uint16, word uint32) dev.ChanStatus {
	for i := range 4 {
		st := WriteByte(dva, uint8(word>>(24-8*i)))
		if st != dev.ChsOK {
			return st
		}
	}
	return dev.ChsOK
}

// Device has finished command. Return CCH if command chaining.
func End(dva uint16) dev.ChanStatus {
	slot := findSlot(dva)
	if slot == nil || !slot.active {
		return dev.ChsInactive
	}
	if (slot.flags & dev.CmfICE) != 0 {
		setCtlInt(slot, dva)
	}
	if (slot.flags & dev.CmfCC) != 0 {
		return dev.ChsCCH
	}
	slot.active = false
	return dev.ChsOK
}

// Terminate current command list.
func UnusualEnd(dva uint16) {
	slot := findSlot(dva)
	if slot == nil || !slot.active {
		return
	}
	slot.chf |= dev.ChfUEN
	slot.active = false
	if (slot.flags & dev.CmfIUE) != 0 {
		setCtlInt(slot, dva)
	}
	debug.DebugChanf(dev.GetChan(dva), debugMask(dva), debugCmd, "%03x unusual end flags %02x", dva, slot.chf)
}

// Set an error flag, return true if channel halted transfer.
func SetFlag(dva uint16, flag uint32) bool {
	slot := findSlot(dva)
	if slot == nil {
		return true
	}
	slot.chf |= flag
	halt := false
	switch {
	case (flag & dev.ChfLNTE) != 0:
		halt = (slot.flags & dev.CmfSIL) == 0
	case (flag & dev.ChfXMDE) != 0:
		halt = (slot.flags & dev.CmfHTE) != 0
	case (flag & (dev.ChfXMME | dev.ChfXMAE | dev.ChfIOPE)) != 0:
		halt = true
	}
	if halt {
		UnusualEnd(dva)
	}
	return halt
}

// Return error flags of device.
func Flags(dva uint16) uint32 {
	slot := findSlot(dva)
	if slot == nil {
		return 0
	}
	return slot.chf
}

// Test command flag of current command.
func TestCmdFlag(dva uint16, flag uint32) bool {
	slot := findSlot(dva)
	if slot == nil {
		return false
	}
	return (slot.flags & flag) != 0
}

func setCtlInt(slot *chanCtl, dva uint16) {
	slot.chi = dev.GetUnit(dva)
	slot.inp = true
	IrqPending = true
	debug.DebugChanf(dev.GetChan(dva), debugMask(dva), debugInt, "%03x controller interrupt", dva)
}

// Return unit with pending controller interrupt, -1 if none.
func CheckCtlInt(dva uint16) int {
	slot := findSlot(dva)
	if slot == nil {
		return -1
	}
	return slot.chi
}

// Clear controller interrupt, return unit that had it or -1.
func ClearCtlInt(dva uint16) int {
	slot := findSlot(dva)
	if slot == nil {
		return -1
	}
	unit := slot.chi
	slot.chi = -1
	slot.inp = false
	updateIrq()
	return unit
}

// Device requests interrupt.
func SetDevInt(dva uint16) {
	slot := findSlot(dva)
	if slot == nil {
		return
	}
	slot.inp = true
	IrqPending = true
}

// Device no longer requests interrupt.
func ClearDevInt(dva uint16) {
	slot := findSlot(dva)
	if slot == nil {
		return
	}
	slot.inp = false
	updateIrq()
}

// Return true if device has interrupt pending.
func IntPending(dva uint16) bool {
	slot := findSlot(dva)
	return slot != nil && slot.inp
}

// Reset channel state for device.
func ResetDevice(dva uint16) {
	slot := findSlot(dva)
	if slot == nil {
		return
	}
	resetSlot(slot)
	updateIrq()
}

// IOP gives devices access to the channel routines.
type IOP struct{}

func (IOP) GetCommand(dva uint16) (uint8, dev.ChanStatus)   { return GetCommand(dva) }
func (IOP) ReadByte(dva uint16) (uint8, dev.ChanStatus)     { return ReadByte(dva) }
func (IOP) WriteByte(dva uint16, data uint8) dev.ChanStatus { return WriteByte(dva, data) }
func (IOP) ReadWord(dva uint16) (uint32, dev.ChanStatus)    { return ReadWord(dva) }
func (IOP) WriteWord(dva uint16, w uint32) dev.ChanStatus   { return WriteWord(dva, w) }
func (IOP) End(dva uint16) dev.ChanStatus                   { return End(dva) }
func (IOP) UnusualEnd(dva uint16)                           { UnusualEnd(dva) }
func (IOP) SetFlag(dva uint16, flag uint32) bool            { return SetFlag(dva, flag) }
func (IOP) TestCmdFlag(dva uint16, flag uint32) bool        { return TestCmdFlag(dva, flag) }
func (IOP) CheckCtlInt(dva uint16) int                      { return CheckCtlInt(dva) }
func (IOP) ClearCtlInt(dva uint16) int                      { return ClearCtlInt(dva) }
func (IOP) SetDevInt(dva uint16)                            { SetDevInt(dva) }
func (IOP) ClearDevInt(dva uint16)                          { ClearDevInt(dva) }
func (IOP) ResetDevice(dva uint16)                          { ResetDevice(dva) }

// register a channel create on initialize.
func init() {
	config.RegisterModel("CHANNEL", config.TypeOptions, create)
}

// Create a channel.
func create(_ uint16, number string, options []config.Option) error {
	ch, err := strconv.ParseUint(number, 10, 4)
	if err != nil {
		return errors.New("channel number must be a number: " + number)
	}
	if len(options) != 0 {
		return errors.New("channel invalid option: " + strings.ToUpper(options[0].Name))
	}
	return AddChannel(int(ch))
}
