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
	"strings"

	"github.com/spf13/viper"

	etc "github.com/nabbar/etbroker/internal/etcode"
)

// EnvPrefix is prepended to every environment variable viper checks, e.g.
// ETBROKER_TCP_PORT for the tcp_port field.
const EnvPrefix = "ETBROKER"

// Load reads configPath (any format viper supports: yaml/json/toml/...)
// over top of Default(), applies environment overrides under EnvPrefix,
// and validates the result.
func Load(configPath string) (Config, etc.Error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("segment_name", def.SegmentName)
	v.SetDefault("tcp_port", def.TCPPort)
	v.SetDefault("udp_port", def.UDPPort)
	v.SetDefault("n_events", def.NEvents)
	v.SetDefault("event_size", def.EventSize)
	v.SetDefault("n_selects", def.NSelects)
	v.SetDefault("debug_level", def.DebugLevel)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, etc.BadArg.Errorf("reading config %q: %v", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, etc.BadArg.Errorf("unmarshalling config: %v", err)
	}

	if verr := cfg.Validate(); verr != nil {
		return Config{}, verr
	}
	return cfg, nil
}
