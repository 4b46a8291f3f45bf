/*
 * Sigma DP - Seek and recalibrate tests
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
	"testing"

	dev "github.com/rcornwell/sigmadp/emu/device"
	"github.com/rcornwell/sigmadp/emu/event"
)

// Advance time until cond is true.
func runUntil(t *testing.T, el *event.EventList, cond func() bool) {
	t.Helper()
	for n := 0; !cond(); n++ {
		if n > 100000 {
			t.Fatalf("Condition not reached at time %d", el.Now())
		}
		el.Advance(1)
	}
}

func TestSeekDeferred(t *testing.T) {
	ctl, fc, el := setupController(t, Fam7275)
	u := ctl.units[1]
	fc.cmds = []*fakeCmd{{order: 0x83, count: 4, in: []uint8{0, 3, 0, 0}}}
	sio(t, ctl, 1)
	runUntil(t, el, u.seekActive)
	if u.seekState != seekInt {
		t.Errorf("Seek state expected %02x got: %02x", seekInt, u.seekState)
	}

	// Controller interrupt pending when the arm arrives.
	fc.chi = 5
	runUntil(t, el, func() bool { return u.seekState == seekWait })
	if ctl.ski != 0 || fc.devInt {
		t.Errorf("Seek interrupt posted while controller interrupt pending ski: %04x", ctl.ski)
	}
	if !u.seekActive() {
		t.Fatalf("Deferred seek not rescheduled")
	}
	exp := ctl.time * u.geometry().Sectors
	if rem := el.Remaining(u, seekEvent); rem != exp {
		t.Errorf("Deferred seek expected in %d got: %d", exp, rem)
	}
	if !u.onCylinder() {
		t.Errorf("Waiting drive should be on cylinder")
	}

	// Still pending, deferred again.
	el.Advance(exp)
	if ctl.ski != 0 || !u.seekActive() {
		t.Errorf("Seek interrupt posted on second pass ski: %04x", ctl.ski)
	}

	fc.chi = -1
	runEvents(el, 10000)
	if ctl.ski != 1<<1 || !fc.devInt {
		t.Errorf("Seek interrupt expected on unit 1 ski: %04x", ctl.ski)
	}
	if u.addr != MakeAddr(3, 0, 0) {
		t.Errorf("Seek address expected 3/0/0 got: %s", u.addr)
	}
}

func TestRecalibrate(t *testing.T) {
	ctl, fc, el := setupController(t, Fam7275)
	u := ctl.units[0]
	u.addr = MakeAddr(7, 2, 3)
	fc.cmds = []*fakeCmd{{order: 0x33, count: 1}}
	sio(t, ctl, 0)
	runUntil(t, el, u.seekActive)
	if u.seekState != seekPlain {
		t.Errorf("Recalibrate state expected %02x got: %02x", seekPlain, u.seekState)
	}
	if exp := 7 * ctl.stime; el.Remaining(u, seekEvent) != exp {
		t.Errorf("Recalibrate time expected %d got: %d", exp, el.Remaining(u, seekEvent))
	}
	runEvents(el, 10000)
	if u.addr != MakeAddr(0, 0, 0) {
		t.Errorf("Recalibrate address expected 0/0/0 got: %s", u.addr)
	}
	if diff := (ctl.flags & flagDiff) >> flagVDiff; diff != 7 {
		t.Errorf("Cylinder difference expected 7 got: %d", diff)
	}
	if ctl.ski != 0 || fc.devInt {
		t.Errorf("Recalibrate without interrupt posted ski: %04x", ctl.ski)
	}
	if fc.ends != 1 || fc.uends != 0 {
		t.Errorf("Recalibrate expected 1 end got: %d ends %d uends", fc.ends, fc.uends)
	}

	// Interrupt form.
	u.addr = MakeAddr(4, 1, 1)
	fc.cmds = []*fakeCmd{{order: 0xb3, count: 1}}
	sio(t, ctl, 0)
	runUntil(t, el, u.seekActive)
	if u.seekState != seekInt {
		t.Errorf("Recalibrate interrupt state expected %02x got: %02x", seekInt, u.seekState)
	}
	runEvents(el, 10000)
	if ctl.ski != 1 || !fc.devInt {
		t.Errorf("Recalibrate interrupt expected on unit 0 ski: %04x", ctl.ski)
	}
	if diff := (ctl.flags & flagDiff) >> flagVDiff; diff != 4 || u.addr != 0 {
		t.Errorf("Recalibrate expected diff 4 at 0/0/0 got: %d %s", diff, u.addr)
	}
}

func TestSeekBadAddress(t *testing.T) {
	ctl, fc, el := setupController(t, Fam7275)
	fc.cmds = []*fakeCmd{{order: 0x03, count: 4, in: []uint8{0x04, 0, 1, 0}}}
	sio(t, ctl, 0)
	runEvents(el, 10000)
	if (ctl.flags & flagPGE) == 0 {
		t.Errorf("Seek with high address bits expected PGE got: %08x", ctl.flags)
	}
	if fc.ends != 1 || fc.uends != 0 {
		t.Errorf("Seek expected 1 end got: %d ends %d uends", fc.ends, fc.uends)
	}
}

func TestSeekShort(t *testing.T) {
	ctl, fc, el := setupController(t, Fam7275)
	u := ctl.units[0]
	u.addr = MakeAddr(2, 0, 0)
	fc.cmds = []*fakeCmd{{order: 0x03, count: 2, in: []uint8{0, 1}}}
	sio(t, ctl, 0)
	runEvents(el, 10000)
	if (ctl.flags & flagPGE) == 0 {
		t.Errorf("Short seek expected PGE got: %08x", ctl.flags)
	}
	if (fc.chf & dev.ChfLNTE) == 0 || fc.uends != 1 || fc.ends != 0 {
		t.Errorf("Short seek expected length error got: chf %08x %d uends %d ends", fc.chf, fc.uends, fc.ends)
	}
	if u.seekActive() || u.addr != MakeAddr(2, 0, 0) {
		t.Errorf("Short seek moved arm to: %s", u.addr)
	}

	// Length errors suppressed, still no seek.
	fc.chf = 0
	fc.uends = 0
	fc.cmds = []*fakeCmd{{order: 0x03, flags: dev.CmfSIL, count: 2, in: []uint8{0, 1}}}
	sio(t, ctl, 0)
	runEvents(el, 10000)
	if (ctl.flags & flagPGE) != 0 {
		t.Errorf("Suppressed length error set PGE: %08x", ctl.flags)
	}
	if fc.uends != 1 || u.seekActive() || u.addr != MakeAddr(2, 0, 0) {
		t.Errorf("Short seek expected unusual end got: %d uends addr %s", fc.uends, u.addr)
	}
}
