/*
 * Sigma DP - I/O processor test device
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
	"github.com/rcornwell/sigmadp/command/command"
	dev "github.com/rcornwell/sigmadp/emu/device"
)

// Multi unit device that lets tests drive the channel directly.
type TestDev struct {
	Addr    uint16 // Base device address
	Status  uint32 // Status returned on SIO, TIO and TDV
	LastOp  int    // Last operation dispatched
	LastDva uint16 // Address of last operation
	resets  int    // Number of resets
	ackUnit int    // Unit reported on AIO
}

func (d *TestDev) Dispatch(op int, dva uint16) (uint32, error) {
	d.LastOp = op
	d.LastDva = dva
	switch op {
	case dev.OpSIO, dev.OpTIO, dev.OpTDV:
		return d.Status, nil
	case dev.OpHIO:
		UnusualEnd(dva)
		return 0, nil
	case dev.OpAIO:
		unit := ClearCtlInt(dva)
		if unit < 0 {
			unit = d.ackUnit
		}
		return uint32(unit) << dev.DvtVUnit, nil
	}
	return 0, dev.ErrInternal
}

func (d *TestDev) Reset() {
	d.resets++
}

func (d *TestDev) Debug(_ string) error {
	return dev.ErrNoFunc
}

func (d *TestDev) Command(_ uint16) (command.Command, error) {
	return nil, dev.ErrNoFunc
}
