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

package etconfig_test

import (
	"os"
	"path/filepath"

	etc "github.com/nabbar/etbroker/internal/etcode"
	etconfig "github.com/nabbar/etbroker/internal/etconfig"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config.Validate", func() {
	It("accepts the default configuration", func() {
		Expect(etconfig.Default().Validate()).To(BeNil())
	})

	It("rejects a missing segment name", func() {
		cfg := etconfig.Default()
		cfg.SegmentName = ""
		err := cfg.Validate()
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.BadArg)).To(BeTrue())
	})

	It("rejects a zero TCP port", func() {
		cfg := etconfig.Default()
		cfg.TCPPort = 0
		Expect(cfg.Validate()).ToNot(BeNil())
	})

	It("rejects group quotas summing past n_events", func() {
		cfg := etconfig.Default()
		cfg.NEvents = 10
		cfg.GroupQuotas = []etconfig.GroupQuota{{Count: 6}, {Count: 6}}
		err := cfg.Validate()
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.BadArg)).To(BeTrue())
	})

	It("accepts group quotas summing to exactly n_events", func() {
		cfg := etconfig.Default()
		cfg.NEvents = 10
		cfg.GroupQuotas = []etconfig.GroupQuota{{Count: 4}, {Count: 6}}
		Expect(cfg.Validate()).To(BeNil())
	})
})

var _ = Describe("Load", func() {
	It("loads and validates a YAML config file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "etbroker.yaml")
		body := "segment_name: test-broker\ntcp_port: 9200\nudp_port: 9201\nn_events: 128\nevent_size: 1024\n"
		Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())

		cfg, err := etconfig.Load(path)
		Expect(err).To(BeNil())
		Expect(cfg.SegmentName).To(Equal("test-broker"))
		Expect(cfg.TCPPort).To(Equal(9200))
		Expect(cfg.NEvents).To(Equal(128))
	})

	It("falls back to defaults with no config file", func() {
		cfg, err := etconfig.Load("")
		Expect(err).To(BeNil())
		Expect(cfg.SegmentName).To(Equal(etconfig.Default().SegmentName))
	})

	It("fails on an unreadable config path", func() {
		_, err := etconfig.Load("/nonexistent/etbroker.yaml")
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(etc.BadArg)).To(BeTrue())
	})
})
