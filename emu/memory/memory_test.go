package memory

/*
 * Sigma DP - Main memory tests
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

import (
	"testing"
)

// Set size in K.
func TestSetSize(t *testing.T) {
	m := NewMemory(1)
	for i := 1; i < 32; i++ {
		m.SetSize(i)
		r := m.Size()
		if r != uint32(i*1024*4) {
			t.Errorf("Memory size not correct got: %d expected: %d", r, i*1024*4)
		}
	}
	m.SetSize(64 * 1024)
	if m.Size() != maxSize*1024*4 {
		t.Errorf("Memory size not limited got: %d expected: %d", m.Size(), maxSize*1024*4)
	}
}

// Check word access.
func TestWord(t *testing.T) {
	m := NewMemory(1)
	for i := range uint32(256) {
		if m.PutWord(i*4, i) {
			t.Errorf("PutWord failed at %x", i*4)
		}
	}
	for i := range uint32(256) {
		r, err := m.GetWord(i * 4)
		if err {
			t.Errorf("GetWord failed at %x", i*4)
		}
		if r != i {
			t.Errorf("GetWord not correct got: %d expected: %d", r, i)
		}
	}
	if _, err := m.GetWord(m.Size()); !err {
		t.Errorf("GetWord past end of memory did not fail")
	}
	if !m.PutWord(m.Size()+4, 0) {
		t.Errorf("PutWord past end of memory did not fail")
	}
}

// Bytes are numbered from the left of the word.
func TestByte(t *testing.T) {
	m := NewMemory(1)
	m.PutWord(0x100, 0x11223344)
	for i, v := range []uint8{0x11, 0x22, 0x33, 0x44} {
		r, err := m.GetByte(0x100 + uint32(i))
		if err || r != v {
			t.Errorf("GetByte %d not correct got: %02x expected: %02x", i, r, v)
		}
	}
	m.PutByte(0x102, 0xff)
	r, _ := m.GetWord(0x100)
	if r != 0x1122ff44 {
		t.Errorf("PutByte not correct got: %08x expected: %08x", r, 0x1122ff44)
	}
	if !m.PutByte(m.Size(), 0) {
		t.Errorf("PutByte past end of memory did not fail")
	}
}
