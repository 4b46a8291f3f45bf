/*
 * Sigma DP - Device definitions
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

package device

import (
	"errors"

	"github.com/rcornwell/sigmadp/command/command"
)

// Channel instructions presented to a device dispatcher.
const (
	OpSIO = 1 + iota // Start I/O
	OpTIO            // Test I/O
	OpTDV            // Test device
	OpHIO            // Halt I/O
	OpAIO            // Acknowledge interrupt
)

// Condition codes returned in the status word.
const (
	CC1 uint32 = 8
	CC2 uint32 = 4
	CC3 uint32 = 2
	CC4 uint32 = 1
)

const (
	DvtVCC   = 16 // Condition code position in status word
	DvtVUnit = 24 // Unit number position in status word

	DvtNoDev uint32 = (CC1 | CC2) << DvtVCC // No such device

	// Device status byte.
	DvsAuto  uint32 = 0x10 // Device in automatic mode
	DvsCBusy uint32 = 0x06 // Controller busy
	DvsDBusy uint32 = 0x60 // Device busy
	DvsCst   uint32 = 0x06 // Controller state field
	DvsDst   uint32 = 0x60 // Device state field
)

// Device addresses.
const (
	DvaMulti  uint16 = 0x80   // Multi unit controller
	DvaMUnit  uint16 = 0x0f   // Unit number for multi unit controller
	DvaMChan  uint16 = 0x0f00 // Channel number
	DvaVChan         = 8
	NoDev     uint16 = 0xffff // Code for no device
	MaxDevice        = 256
)

// Status of a channel data transfer.
type ChanStatus int

const (
	ChsOK  ChanStatus = iota // Transfer continues
	ChsZBC                   // Byte count reached zero
	ChsCCH                   // Command chain to next command
	ChsErr                   // First error status
	ChsNxm                   // Non existent memory
	ChsInactive              // Channel not active for device
)

// Return true if channel status is an error.
func (s ChanStatus) IsError() bool {
	return s >= ChsErr
}

func (s ChanStatus) String() string {
	switch s {
	case ChsOK:
		return "OK"
	case ChsZBC:
		return "ZBC"
	case ChsCCH:
		return "CCH"
	case ChsNxm:
		return "NXM"
	case ChsInactive:
		return "INACTIVE"
	}
	return "ERR"
}

// Channel error flags.
const (
	ChfLNTE uint32 = 0x01 // Length error
	ChfXMDE uint32 = 0x02 // Transmission data error
	ChfXMME uint32 = 0x04 // Transmission memory error
	ChfXMAE uint32 = 0x08 // Transmission address error
	ChfIOPE uint32 = 0x10 // IOP halt
	ChfUEN  uint32 = 0x20 // Unusual end
)

// Command doubleword flags.
const (
	CmfDC  uint32 = 0x80 // Data chain
	CmfIZC uint32 = 0x40 // Interrupt at zero count
	CmfCC  uint32 = 0x20 // Command chain
	CmfICE uint32 = 0x10 // Interrupt at channel end
	CmfHTE uint32 = 0x08 // Halt on transmission error
	CmfIUE uint32 = 0x04 // Interrupt at unusual end
	CmfSIL uint32 = 0x02 // Suppress incorrect length
	CmfSKP uint32 = 0x01 // Skip, don't store data
)

var (
	ErrNoDevice = errors.New("no such device")
	ErrInternal = errors.New("internal error")
	ErrAttached = errors.New("unit attached")
	ErrNoFunc   = errors.New("function not supported")
)

// Interface for devices attached to a channel.
type Device interface {
	Dispatch(op int, dva uint16) (uint32, error) // Process channel instruction
	Reset()                                      // Reset device
	Debug(opt string) error                      // Enable debug option
	Command(dva uint16) (command.Command, error) // Return command interface for address
}

// Return unit number from device address.
func GetUnit(dva uint16) int {
	return int(dva & DvaMUnit)
}

// Return channel number from device address.
func GetChan(dva uint16) int {
	return int((dva & DvaMChan) >> DvaVChan)
}
