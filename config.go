package keyboard

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig is the on-disk options format. Durations are plain
// millisecond integers; key references use catalog names (see
// KeyByName). TOML forbids raw control bytes in strings, so sequences
// spell ESC with the escape "":
//
//	utf8 = true
//	key_timeout_ms = 100
//
//	[[keys]]
//	seq = "\u001bOA"
//	key = "up"
type fileConfig struct {
	UTF8          *bool     `toml:"utf8"`
	MouseTracking *bool     `toml:"mouse_tracking"`
	KeyTimeoutMS  *int      `toml:"key_timeout_ms"`
	PollFastMS    *int      `toml:"poll_fast_ms"`
	PollSlowMS    *int      `toml:"poll_slow_ms"`
	QueueSize     *int      `toml:"queue_size"`
	BufferSize    *int      `toml:"buffer_size"`
	Keys          []fileKey `toml:"keys"`
}

type fileKey struct {
	Seq string `toml:"seq"`
	Key string `toml:"key"`
}

// OptionsFromFile loads engine options from a TOML file, applied on
// top of opts. Fields absent from the file keep their value from opts;
// [[keys]] entries are appended to the capability catalog.
func OptionsFromFile(path string, opts Options) (Options, error) {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return opts, fmt.Errorf("options file %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return opts, fmt.Errorf("options file %s: unknown field %q", path, undec[0].String())
	}

	if fc.UTF8 != nil {
		opts.UTF8 = *fc.UTF8
	}
	if fc.MouseTracking != nil {
		opts.MouseTracking = *fc.MouseTracking
	}
	if fc.KeyTimeoutMS != nil {
		opts.KeyTimeout = time.Duration(*fc.KeyTimeoutMS) * time.Millisecond
	}
	if fc.PollFastMS != nil {
		opts.PollFast = time.Duration(*fc.PollFastMS) * time.Millisecond
	}
	if fc.PollSlowMS != nil {
		opts.PollSlow = time.Duration(*fc.PollSlowMS) * time.Millisecond
	}
	if fc.QueueSize != nil {
		opts.QueueSize = *fc.QueueSize
	}
	if fc.BufferSize != nil {
		opts.BufferSize = *fc.BufferSize
	}
	for _, fk := range fc.Keys {
		key, ok := KeyByName(fk.Key)
		if !ok {
			return opts, fmt.Errorf("options file %s: unknown key name %q", path, fk.Key)
		}
		if fk.Seq == "" {
			return opts, fmt.Errorf("options file %s: empty sequence for key %q", path, fk.Key)
		}
		opts.CapabilityKeys = append(opts.CapabilityKeys, KeyEntry{Seq: fk.Seq, Key: key})
	}
	return opts, nil
}
