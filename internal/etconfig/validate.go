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

package etconfig

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

// Validate applies struct tag constraints (which include NSelects not being
// negative), then the one cross-field check no tag can express: the group
// quota sum must not exceed NEvents.
func (c Config) Validate() etc.Error {
	val := validator.New()
	if err := val.Struct(c); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return etc.BadArg.Errorf("validating config: %v", err)
		}
		out := etc.BadArg.Error()
		for _, e := range err.(validator.ValidationErrors) {
			out.Add(fmt.Errorf("field %q fails constraint %q", e.Field(), e.ActualTag()))
		}
		return out
	}

	if len(c.GroupQuotas) > 0 {
		sum := 0
		for _, q := range c.GroupQuotas {
			sum += q.Count
		}
		if sum > c.NEvents {
			return etc.BadArg.Errorf("group quotas sum to %d, exceeding n_events %d", sum, c.NEvents)
		}
	}

	return nil
}
