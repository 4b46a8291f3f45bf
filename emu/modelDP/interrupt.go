/*
 * Sigma DP - Interrupt bookkeeping
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

// Flag seek complete interrupt for unit.
func (c *Controller) setSeekInt(un int) {
	c.ski |= 1 << un
	c.chn.SetDevInt(c.dva)
	c.debugf(debugSeek, "seek interrupt unit %d ski %04x", un, c.ski)
}

// Clear seek interrupt for unit. Interrupt line drops when nothing left.
func (c *Controller) clearSeekInt(un int) {
	c.ski &^= 1 << un
	if c.ski != 0 {
		c.chn.SetDevInt(c.dva)
	} else if c.chn.CheckCtlInt(c.dva) < 0 {
		c.chn.ClearDevInt(c.dva)
	}
}

// Acknowledge interrupt, controller interrupt first, then lowest seek
// interrupt. Returns unit number.
func (c *Controller) acknowledge() int {
	if iu := c.chn.ClearCtlInt(c.dva); iu >= 0 {
		if c.ski != 0 {
			c.chn.SetDevInt(c.dva)
		}
		return iu
	}
	for i := range c.family.NumDrives() {
		if (c.ski & (1 << i)) != 0 {
			c.clearSeekInt(i)
			return i
		}
	}
	return 0
}
