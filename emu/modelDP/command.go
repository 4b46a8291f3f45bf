/*
 * Sigma DP - Disk commands
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

import "fmt"

// Channel order or internal state of a unit.
type Command uint16

const (
	cmdWrite  Command = 0x01 // Write
	cmdRead   Command = 0x02 // Read
	cmdSeek   Command = 0x03 // Seek
	cmdSeekI  Command = 0x83 // Seek and interrupt
	cmdSense  Command = 0x04 // Sense
	cmdCheck  Command = 0x05 // Write check
	cmdRsrv   Command = 0x07 // Reserve
	cmdWHdr   Command = 0x09 // Write header
	cmdRHdr   Command = 0x0a // Read header
	cmdCRIOF  Command = 0x0f // Controller interrupt off
	cmdRdEES  Command = 0x12 // Read EES
	cmdTest   Command = 0x13 // Test mode
	cmdRls    Command = 0x17 // Release
	cmdCRION  Command = 0x1f // Controller interrupt on
	cmdRlsA   Command = 0x23 // Release alternate
	cmdRecal  Command = 0x33 // Recalibrate
	cmdRecalI Command = 0xb3 // Recalibrate and interrupt

	stateInit Command = 0x100 // Fetch next command
	stateEnd  Command = 0x101 // Signal channel end
)

const (
	legal10B = 1<<Fam7240 | 1<<Fam7270
	legal16B = 1<<Fam7260 | 1<<Fam7265 | 1<<Fam7275 | 1<<FamT3281
	legalAll = legal10B | legal16B
)

type cmdInfo struct {
	families int  // Families accepting command
	fast     bool // Not a data transfer
	ctl      bool // Valid to controller unit
	name     string
}

var commandTable = map[Command]cmdInfo{
	cmdWrite:  {legalAll, false, false, "WRITE"},
	cmdRead:   {legalAll, false, false, "READ"},
	cmdSeek:   {legalAll, true, false, "SEEK"},
	cmdSeekI:  {legalAll, true, false, "SEEKI"},
	cmdSense:  {legalAll, true, false, "SENSE"},
	cmdCheck:  {legalAll, false, false, "CHECK"},
	cmdRsrv:   {legal16B, true, false, "RSRV"},
	cmdWHdr:   {legalAll, false, false, "WHDR"},
	cmdRHdr:   {legalAll, false, false, "RHDR"},
	cmdCRIOF:  {legal16B, true, true, "CRIOF"},
	cmdRdEES:  {legalAll, false, false, "RDEES"},
	cmdTest:   {legalAll, true, false, "TEST"},
	cmdRls:    {legal16B, true, false, "RLS"},
	cmdCRION:  {legal16B, true, true, "CRION"},
	cmdRlsA:   {legal10B, true, false, "RLSA"},
	cmdRecal:  {legalAll, true, false, "RECAL"},
	cmdRecalI: {legal16B, true, false, "RECALI"},
}

// Command accepted by controller family.
func (c Command) Legal(f Family) bool {
	info, ok := commandTable[c]
	return ok && (info.families&(1<<f)) != 0
}

// Command scheduled without waiting for sector.
func (c Command) Fast() bool {
	return commandTable[c].fast
}

// Command may be sent to the controller itself.
func (c Command) CtlValid() bool {
	return commandTable[c].ctl
}

func (c Command) String() string {
	switch c {
	case stateInit:
		return "INIT"
	case stateEnd:
		return "END"
	}
	if info, ok := commandTable[c]; ok {
		return info.name
	}
	return fmt.Sprintf("CMD(%02x)", uint16(c))
}
