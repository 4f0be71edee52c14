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

// Package etconfig defines the broker's configuration model and its
// load/validate path (spec section "Environment/config").
package etconfig

// GroupQuota mirrors etpool.GroupQuota in a config-file-friendly shape, so
// the pool's event groups can be declared without importing etpool here.
type GroupQuota struct {
	Count int `mapstructure:"count" json:"count" yaml:"count" toml:"count" validate:"gt=0"`
}

// Config is the full broker process configuration: shared-segment identity,
// network listeners, and pool shape.
type Config struct {
	// SegmentName identifies this broker instance for discovery matching
	// (spec's "filename" concept carried over from the shared-segment
	// name, since no real shared memory segment exists here).
	SegmentName string `mapstructure:"segment_name" json:"segment_name" yaml:"segment_name" toml:"segment_name" validate:"required"`

	TCPPort int `mapstructure:"tcp_port" json:"tcp_port" yaml:"tcp_port" toml:"tcp_port" validate:"required,gt=0,lt=65536"`
	UDPPort int `mapstructure:"udp_port" json:"udp_port" yaml:"udp_port" toml:"udp_port" validate:"required,gt=0,lt=65536"`

	MulticastAddrs []string `mapstructure:"multicast_addrs" json:"multicast_addrs" yaml:"multicast_addrs" toml:"multicast_addrs"`

	NEvents   int `mapstructure:"n_events" json:"n_events" yaml:"n_events" toml:"n_events" validate:"required,gt=0"`
	EventSize int `mapstructure:"event_size" json:"event_size" yaml:"event_size" toml:"event_size" validate:"required,gt=0"`

	GroupQuotas []GroupQuota `mapstructure:"group_quotas" json:"group_quotas" yaml:"group_quotas" toml:"group_quotas" validate:"omitempty,dive"`

	// NSelects is the select-control-ints width carried by every event.
	NSelects int `mapstructure:"n_selects" json:"n_selects" yaml:"n_selects" toml:"n_selects" validate:"gte=0"`

	DebugLevel string `mapstructure:"debug_level" json:"debug_level" yaml:"debug_level" toml:"debug_level" validate:"omitempty,oneof=panic fatal error warn info debug trace"`
}

// Default returns a Config with the broker's conventional defaults, meant
// to be overridden field-by-field by viper before Validate runs.
func Default() Config {
	return Config{
		SegmentName: "etbroker",
		TCPPort:     9100,
		UDPPort:     9101,
		NEvents:     256,
		EventSize:   4096,
		NSelects:    4,
		DebugLevel:  "info",
	}
}
