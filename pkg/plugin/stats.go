package plugin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat selects how dates are rendered in collector documents.
type DateFormat int

const (
	// DateEpoch renders dates as integer seconds since the Unix epoch.
	DateEpoch DateFormat = iota
	// DateLocal renders dates as strings in the host's local time zone.
	DateLocal
	// DateUTC renders dates as strings in UTC.
	DateUTC
)

const (
	localLayout = "2006-01-02 15:04:05.999999999 -07:00"
	utcLayout   = "2006-01-02 15:04:05.999999999 UTC"
)

func (f DateFormat) String() string {
	switch f {
	case DateLocal:
		return "local"
	case DateUTC:
		return "utc"
	default:
		return "epoch"
	}
}

// ParseDateFormat parses "epoch", "local" or "utc" (case-insensitive).
func ParseDateFormat(s string) (DateFormat, error) {
	switch strings.ToLower(s) {
	case "epoch":
		return DateEpoch, nil
	case "local":
		return DateLocal, nil
	case "utc":
		return DateUTC, nil
	default:
		return DateEpoch, fmt.Errorf("unknown date format %q (want epoch, local or utc)", s)
	}
}

// StatsConfig is the per-request configuration passed to every collector.
type StatsConfig struct {
	DateFormat    DateFormat
	HumanReadable bool

	// QueryOther holds the request's query parameters that are not
	// interpreted by the server itself.
	QueryOther map[string]string

	// PluginConfig is the process-wide plugin configuration tree. It is shared
	// between requests and must not be modified.
	PluginConfig ConfigValue
}

// Section returns plugin_config[name], or None.
func (c *StatsConfig) Section(name string) ConfigValue {
	return c.PluginConfig.Get(name)
}

// Disabled reports whether plugin_config[name].disabled is true.
// Any other shape counts as not disabled.
func (c *StatsConfig) Disabled(name string) bool {
	disabled, ok := c.Section(name).Get("disabled").AsBool()
	return ok && disabled
}

// Query returns the raw query parameter key, if present.
func (c *StatsConfig) Query(key string) (string, bool) {
	v, ok := c.QueryOther[key]
	return v, ok
}

// Size formats a byte count according to HumanReadable.
func (c *StatsConfig) Size(bytes uint64) Size {
	return Size{Bytes: bytes, Human: c.HumanReadable}
}

// Date formats t according to DateFormat.
func (c *StatsConfig) Date(t time.Time) Date {
	return Date{Time: t, Format: c.DateFormat}
}

// Size is a byte count that marshals either as an integer or, when Human is
// set, as a whole number of mebibytes such as "3072MiB".
type Size struct {
	Bytes uint64
	Human bool
}

const mebibyte = 1024 * 1024

func (s Size) String() string {
	if s.Human {
		return strconv.FormatUint(s.Bytes/mebibyte, 10) + "MiB"
	}
	return strconv.FormatUint(s.Bytes, 10)
}

// MarshalJSON implements json.Marshaler.
func (s Size) MarshalJSON() ([]byte, error) {
	if s.Human {
		return json.Marshal(s.String())
	}
	return []byte(strconv.FormatUint(s.Bytes, 10)), nil
}

// Date is a point in time that marshals according to its Format.
type Date struct {
	Time   time.Time
	Format DateFormat
}

func (d Date) String() string {
	switch d.Format {
	case DateLocal:
		return d.Time.Local().Format(localLayout)
	case DateUTC:
		return d.Time.UTC().Format(utcLayout)
	default:
		return strconv.FormatInt(d.Time.Unix(), 10)
	}
}

// MarshalJSON implements json.Marshaler. Epoch dates before 1970 clamp to 0.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Format == DateEpoch {
		secs := d.Time.Unix()
		if secs < 0 {
			secs = 0
		}
		return []byte(strconv.FormatInt(secs, 10)), nil
	}
	return json.Marshal(d.String())
}
