/*
 * Sigma DP - Main memory
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

package memory

// Word addressed memory, accessed with byte addresses.
type Memory struct {
	mem  []uint32
	size uint32 // Size in bytes
}

const (
	AMASK   uint32 = 0x00ffffff // Mask address bits
	maxSize        = 4 * 1024   // Max size in K words
)

// Create memory of k K words.
func NewMemory(k int) *Memory {
	m := &Memory{}
	m.SetSize(k)
	return m
}

// Set size in K words, contents are cleared.
func (m *Memory) SetSize(k int) {
	if k > maxSize {
		k = maxSize
	}
	if k < 1 {
		k = 1
	}
	m.mem = make([]uint32, k*1024)
	m.size = uint32(k * 1024 * 4)
}

// Return size of memory in bytes.
func (m *Memory) Size() uint32 {
	return m.size
}

// Check if address in range.
func (m *Memory) CheckAddr(addr uint32) bool {
	return (addr & AMASK) < m.size
}

// Get a word from memory, return true on error.
func (m *Memory) GetWord(addr uint32) (uint32, bool) {
	addr &= AMASK
	if addr >= m.size {
		return 0, true
	}
	return m.mem[addr>>2], false
}

// Put a word to memory, return true on error.
func (m *Memory) PutWord(addr, data uint32) bool {
	addr &= AMASK
	if addr >= m.size {
		return true
	}
	m.mem[addr>>2] = data
	return false
}

// Get a byte from memory, bytes are numbered from left of word.
func (m *Memory) GetByte(addr uint32) (uint8, bool) {
	word, err := m.GetWord(addr)
	if err {
		return 0, true
	}
	shift := 8 * (3 - (addr & 3))
	return uint8(word >> shift), false
}

// Put a byte into memory.
func (m *Memory) PutByte(addr uint32, data uint8) bool {
	addr &= AMASK
	if addr >= m.size {
		return true
	}
	shift := 8 * (3 - (addr & 3))
	mask := uint32(0xff) << shift
	m.mem[addr>>2] = (m.mem[addr>>2] &^ mask) | (uint32(data) << shift)
	return false
}
