/*
 * Sigma DP - Channel instruction dispatch
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

	dev "github.com/rcornwell/sigmadp/emu/device"
)

// Holds the controllers of a system and connects them to the channel.
type Dispatcher struct {
	chn   Channel
	sched Scheduler
	ctls  []*Controller
}

func NewDispatcher(chn Channel, sched Scheduler) *Dispatcher {
	return &Dispatcher{chn: chn, sched: sched}
}

// Add controller, returns its index.
func (d *Dispatcher) Add(c *Controller) int {
	c.Connect(d.chn, d.sched)
	d.ctls = append(d.ctls, c)
	return len(d.ctls) - 1
}

// Return controller by index.
func (d *Dispatcher) Controller(idx int) (*Controller, error) {
	if idx < 0 || idx >= len(d.ctls) {
		return nil, fmt.Errorf("controller %d: %w", idx, dev.ErrInternal)
	}
	return d.ctls[idx], nil
}

// Return all controllers.
func (d *Dispatcher) Controllers() []*Controller {
	return d.ctls
}

// Process channel instruction for controller idx.
func (d *Dispatcher) Dispatch(idx int, op int, dva uint16) (uint32, error) {
	c, err := d.Controller(idx)
	if err != nil {
		return dev.DvtNoDev, err
	}
	return c.Dispatch(op, dva)
}

// Return first pending stop error.
func (d *Dispatcher) TakeError() error {
	for _, c := range d.ctls {
		if err := c.TakeError(); err != nil {
			return err
		}
	}
	return nil
}

// Result of deciding whether an SIO is accepted.
type admission struct {
	status    uint32 // Status returned to channel
	fail      bool   // SIO rejected
	knockDown []int  // Units whose seek interrupt is deferred
	start     bool   // Start the unit
}

// Decide SIO, nothing is changed.
func (c *Controller) admitSIO(un int) admission {
	a := admission{status: c.tioStatus(un)}
	if c.chn.CheckCtlInt(c.dva) >= 0 || (c.ski&(1<<un)) != 0 {
		a.status |= dev.CC2 << dev.DvtVCC
		a.fail = true
		return a
	}
	for i := range c.family.NumDrives() {
		if (c.ski & (1 << i)) != 0 {
			a.knockDown = append(a.knockDown, i)
		}
	}
	a.start = (a.status & (dev.DvsCst | dev.DvsDst)) == 0
	return a
}

// Carry out SIO decision.
func (c *Controller) applySIO(un int, a admission) {
	if a.fail {
		return
	}
	for _, i := range a.knockDown {
		c.clearSeekInt(i)
		s := c.units[i]
		s.activateSeek(c.ctlTime * 10)
		s.seekState = seekWait
		c.debugf(debugSeek, "knock down seek interrupt unit %d", i)
	}
	if a.start {
		u := c.units[un]
		u.cmd = stateInit
		u.activate(c.ctlTime)
	}
}

// Halt one unit.
func (c *Controller) haltUnit(un int) {
	u := c.units[un]
	if u.active() {
		u.cancel()
		c.chn.UnusualEnd(u.dva())
	}
	c.clearSeekInt(un)
	u.cancelSeek()
}

// Process channel instruction, dva includes unit number.
func (c *Controller) Dispatch(op int, dva uint16) (uint32, error) {
	if c.chn == nil || c.sched == nil {
		return dev.DvtNoDev, fmt.Errorf("controller %03x not connected: %w", c.dva, dev.ErrInternal)
	}
	un := dev.GetUnit(dva)
	if !c.unitExists(un) {
		return dev.DvtNoDev, fmt.Errorf("unit %03x: %w", dva, dev.ErrNoDevice)
	}

	var status uint32
	switch op {
	case dev.OpSIO:
		a := c.admitSIO(un)
		c.applySIO(un, a)
		status = a.status
		c.debugf(debugCmd, "SIO unit %d status %08x", un, status)

	case dev.OpTIO:
		status = c.tioStatus(un)

	case dev.OpTDV:
		status = c.tdvStatus(un)

	case dev.OpHIO:
		status = c.tioStatus(un)
		if un != ctlUnit {
			if c.chn.CheckCtlInt(dva) == un {
				c.chn.ClearCtlInt(dva)
			}
			c.haltUnit(un)
		} else {
			for i := range c.family.NumDrives() {
				c.haltUnit(i)
			}
			c.chn.ClearCtlInt(dva)
		}
		c.debugf(debugCmd, "HIO unit %d", un)

	case dev.OpAIO:
		iu := c.acknowledge()
		status = c.aioStatus(iu) | uint32(iu)<<dev.DvtVUnit
		c.debugf(debugCmd, "AIO unit %d status %08x", iu, status)

	default:
		return 0, fmt.Errorf("operation %d: %w", op, dev.ErrInternal)
	}
	return status, nil
}
