/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package etproto

// MagicWord1/2/3 gate both the UDP discovery frame and the TCP handshake
// frame. Their values spell "ET2is2Grreat" in ASCII across three 32-bit words,
// unchanged from the wire format this protocol was distilled from.
const (
	MagicWord1 uint32 = 0x45543269
	MagicWord2 uint32 = 0x73324772
	MagicWord3 uint32 = 0x72656174
)

// Version is the wire protocol version. It only increments on
// wire-incompatible changes; 2 is the current station-select-words form.
const Version uint32 = 2

// CheckMagic reports whether the three words in order match the expected
// gate sequence.
func CheckMagic(w1, w2, w3 uint32) bool {
	return w1 == MagicWord1 && w2 == MagicWord2 && w3 == MagicWord3
}
