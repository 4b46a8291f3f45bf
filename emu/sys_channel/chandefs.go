/*
 * Sigma DP - I/O processor definitions
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
	dev "github.com/rcornwell/sigmadp/emu/device"
)

const (
	MaxChan = 8 // Max number of channels

	orderMask  uint32 = 0xff000000 // Order in first command word
	addrMask   uint32 = 0x000fffff // Byte address in first command word
	flagMask   uint32 = 0xff000000 // Flags in second command word
	countMask  uint32 = 0x0000ffff // Byte count in second command word
	orderTIC   uint8  = 0x08       // Transfer in channel
	orderShift        = 24

	maxCount uint32 = 0x10000 // Count of zero means 64K
)

// Debug options.
const (
	debugCmd = 1 << iota
	debugData
	debugInt
)

var debugOption = map[string]int{
	"CMD":  debugCmd,
	"DATA": debugData,
	"INT":  debugInt,
}

// State of one device slot on a channel.
type chanCtl struct {
	dev    dev.Device // Device attached to slot
	dva    uint16     // Base device address
	clc    uint32     // Command list counter, byte address
	cmd    uint8      // Current order
	flags  uint32     // Command flags
	addr   uint32     // Current byte address
	count  uint32     // Remaining byte count
	chf    uint32     // Channel error flags
	chi    int        // Unit with controller interrupt, -1 if none
	inp    bool       // Interrupt pending
	active bool       // Command list in progress
}

// One I/O processor.
type chanDev struct {
	devTab   [dev.MaxDevice]*chanCtl // Device slots
	debugMsk int                     // Debug mask for channel
}

// Return slot address of device, unit removed for multi unit devices.
func slotAddr(dva uint16) uint16 {
	if (dva & dev.DvaMulti) != 0 {
		return dva &^ dev.DvaMUnit
	}
	return dva
}
