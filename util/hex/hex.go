/*
 * Sigma DP - Hex formatting
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

import "strings"

var hexMap = "0123456789abcdef"

// Append digits hex digits of value.
func formatValue(str *strings.Builder, value uint32, digits int) {
	shift := 4 * (digits - 1)
	for range digits {
		str.WriteByte(hexMap[(value>>shift)&0xf])
		shift -= 4
	}
}

// Append each word as space then 8 hex digits.
func FormatWord(str *strings.Builder, word []uint32) {
	for _, full := range word {
		str.WriteByte(' ')
		formatValue(str, full, 8)
	}
}

// Append bytes as pairs of hex digits, optionally space separated.
func FormatBytes(str *strings.Builder, space bool, data []uint8) {
	for i, by := range data {
		if space && i != 0 {
			str.WriteByte(' ')
		}
		formatValue(str, uint32(by), 2)
	}
}

// One dump line: address of digits hex digits, colon, then the words.
func Line(addr uint32, digits int, words []uint32) string {
	var str strings.Builder
	formatValue(&str, addr, digits)
	str.WriteByte(':')
	FormatWord(&str, words)
	return str.String()
}
