/*
 * Sigma DP - Hex formatting tests
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

package hex

import (
	"strings"
	"testing"
)

func TestFormatWord(t *testing.T) {
	var str strings.Builder
	FormatWord(&str, []uint32{0x12345678, 0xabcdef, 0})
	if str.String() != " 12345678 00abcdef 00000000" {
		t.Errorf("FormatWord got: %q", str.String())
	}
}

func TestFormatBytes(t *testing.T) {
	var str strings.Builder
	FormatBytes(&str, true, []uint8{0x01, 0xfe, 0x80})
	if str.String() != "01 fe 80" {
		t.Errorf("FormatBytes got: %q", str.String())
	}
	str.Reset()
	FormatBytes(&str, false, []uint8{0x01, 0xfe})
	if str.String() != "01fe" {
		t.Errorf("FormatBytes no space got: %q", str.String())
	}
}

func TestLine(t *testing.T) {
	line := Line(0x200, 6, []uint32{1, 0x9abcdef0})
	if line != "000200: 00000001 9abcdef0" {
		t.Errorf("Line got: %q", line)
	}
	line = Line(0x18, 3, nil)
	if line != "018:" {
		t.Errorf("Line empty got: %q", line)
	}
}
