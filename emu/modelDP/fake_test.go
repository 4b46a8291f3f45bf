/*
 * Sigma DP - Test channel for disk controller
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
	"os"
	"testing"

	dev "github.com/rcornwell/sigmadp/emu/device"
	"github.com/rcornwell/sigmadp/emu/event"
)

// One command doubleword as seen by the device.
type fakeCmd struct {
	order uint8
	flags uint32
	count int
	in    []uint8 // Bytes read from memory by the device
}

// Channel that runs a list of commands and collects output.
type fakeChannel struct {
	cmds   []*fakeCmd
	cur    *fakeCmd
	pos    int
	out    []uint8 // Bytes written to memory by the device
	chf    uint32
	ends   int
	uends  int
	chi    int
	devInt bool
}

func newFakeChannel(cmds ...*fakeCmd) *fakeChannel {
	return &fakeChannel{cmds: cmds, chi: -1}
}

func (f *fakeChannel) GetCommand(_ uint16) (uint8, dev.ChanStatus) {
	if len(f.cmds) == 0 {
		return 0, dev.ChsInactive
	}
	f.cur = f.cmds[0]
	f.cmds = f.cmds[1:]
	f.pos = 0
	return f.cur.order, dev.ChsOK
}

// Consume one byte of count, ZBC goes with the last byte.
func (f *fakeChannel) count() dev.ChanStatus {
	if f.cur == nil {
		return dev.ChsInactive
	}
	if f.cur.count == 0 {
		return dev.ChsZBC
	}
	f.cur.count--
	if f.cur.count == 0 {
		return dev.ChsZBC
	}
	return dev.ChsOK
}

func (f *fakeChannel) ReadByte(_ uint16) (uint8, dev.ChanStatus) {
	if f.cur != nil && f.cur.count == 0 {
		return 0, dev.ChsZBC
	}
	st := f.count()
	if st.IsError() {
		return 0, st
	}
	data := uint8(0)
	if f.pos < len(f.cur.in) {
		data = f.cur.in[f.pos]
	}
	f.pos++
	return data, st
}

func (f *fakeChannel) WriteByte(_ uint16, data uint8) dev.ChanStatus {
	if f.cur != nil && f.cur.count == 0 {
		return dev.ChsZBC
	}
	st := f.count()
	if st.IsError() {
		return st
	}
	f.out = append(f.out, data)
	return st
}

func (f *fakeChannel) ReadWord(dva uint16) (uint32, dev.ChanStatus) {
	word := uint32(0)
	st := dev.ChsOK
	for i := range 4 {
		var by uint8
		if st == dev.ChsOK {
			by, st = f.ReadByte(dva)
		}
		word |= uint32(by) << (24 - 8*i)
	}
	return word, st
}

func (f *fakeChannel) WriteWord(dva uint16, word uint32) dev.ChanStatus {
	st := dev.ChsOK
	for i := 0; i < 4 && st == dev.ChsOK; i++ {
		st = f.WriteByte(dva, uint8(word>>(24-8*i)))
	}
	return st
}

func (f *fakeChannel) End(_ uint16) dev.ChanStatus {
	f.ends++
	if f.cur != nil && (f.cur.flags&dev.CmfCC) != 0 {
		return dev.ChsCCH
	}
	f.cur = nil
	return dev.ChsOK
}

func (f *fakeChannel) UnusualEnd(_ uint16) {
	f.uends++
	f.cur = nil
}

func (f *fakeChannel) SetFlag(dva uint16, flag uint32) bool {
	f.chf |= flag
	halt := true
	switch flag {
	case dev.ChfLNTE:
		halt = f.cur == nil || (f.cur.flags&dev.CmfSIL) == 0
	case dev.ChfXMDE:
		halt = f.cur == nil || (f.cur.flags&dev.CmfHTE) != 0
	}
	if halt {
		f.UnusualEnd(dva)
	}
	return halt
}

func (f *fakeChannel) TestCmdFlag(_ uint16, flag uint32) bool {
	return f.cur != nil && (f.cur.flags&flag) != 0
}

func (f *fakeChannel) CheckCtlInt(_ uint16) int {
	return f.chi
}

func (f *fakeChannel) ClearCtlInt(_ uint16) int {
	chi := f.chi
	f.chi = -1
	return chi
}

func (f *fakeChannel) SetDevInt(_ uint16) {
	f.devInt = true
}

func (f *fakeChannel) ClearDevInt(_ uint16) {
	f.devInt = false
}

func (f *fakeChannel) ResetDevice(_ uint16) {
	f.cmds = nil
	f.cur = nil
	f.chi = -1
	f.devInt = false
}

// Controller connected to a fake channel and a real event list.
func setupController(t *testing.T, family Family) (*Controller, *fakeChannel, *event.EventList) {
	t.Helper()
	el := event.NewEventList()
	fc := newFakeChannel()
	ctl := NewController(0x080, family)
	ctl.Connect(fc, el)
	return ctl, fc, el
}

// Attach a new empty image to unit.
func attachTemp(t *testing.T, ctl *Controller, un int) string {
	t.Helper()
	f, err := os.CreateTemp("", "dp*.dsk")
	if err != nil {
		t.Fatalf("Unable to create image: %v", err)
	}
	name := f.Name()
	f.Close()
	err = ctl.Attach(un, name, false)
	if err != nil {
		os.Remove(name)
		t.Fatalf("Unable to attach image: %v", err)
	}
	return name
}

// Advance time until nothing is scheduled.
func runEvents(el *event.EventList, limit int) int {
	n := 0
	for el.AnyEvent() && n < limit {
		el.Advance(1)
		n++
	}
	return n
}

// Issue SIO and return status.
func sio(t *testing.T, ctl *Controller, un int) uint32 {
	t.Helper()
	status, err := ctl.Dispatch(dev.OpSIO, ctl.dva|uint16(un))
	if err != nil {
		t.Fatalf("SIO unit %d failed: %v", un, err)
	}
	return status
}

// Sector worth of bytes with a pattern.
func pattern(seed uint8) []uint8 {
	b := make([]uint8, WordsPerSector*4)
	for i := range b {
		b[i] = uint8(i) + seed
	}
	return b
}
