package config

import (
	"net/url"
	"os"
)

// SourceKind says where a chart's data is read from.
type SourceKind string

const (
	SourceURL      SourceKind = "url"
	SourceFile     SourceKind = "file"
	SourceEmbedded SourceKind = "embedded"
)

// SourceStatus describes the resolved data source of one chart.
type SourceStatus struct {
	Chart    string     `json:"chart"`
	Kind     SourceKind `json:"kind"`
	Location string     `json:"location"` // credentials in URLs are masked
	FromEnv  bool       `json:"from_env"`
}

// CheckSources returns where every configured chart will load its data from.
func CheckSources(cfg *Config) []SourceStatus {
	out := make([]SourceStatus, 0, len(cfg.Charts))
	for i, ch := range cfg.Charts {
		loc := cfg.Data.Resolve(ch.Source)
		s := SourceStatus{
			Chart:   ch.Name,
			FromEnv: i == 0 && os.Getenv(EnvChartSource) != "",
		}
		switch {
		case isURL(loc):
			s.Kind = SourceURL
			s.Location = maskURL(loc)
		case cfg.Data.Dir != "":
			s.Kind = SourceFile
			s.Location = loc
		default:
			s.Kind = SourceEmbedded
			s.Location = loc
		}
		out = append(out, s)
	}
	return out
}

// maskURL hides the password and query values of a data URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k, vals := range q {
			for i, v := range vals {
				vals[i] = maskKey(v)
			}
			q[k] = vals
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// maskKey masks a secret for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}

// Redacted returns a copy of c that is safe to display: credentials in the
// data base URL and in URL chart sources are masked.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Data.BaseURL != "" {
		cp.Data.BaseURL = maskURL(cp.Data.BaseURL)
	}
	cp.Charts = make([]ChartSpec, len(c.Charts))
	for i, ch := range c.Charts {
		if isURL(ch.Source) {
			ch.Source = maskURL(ch.Source)
		}
		cp.Charts[i] = ch
	}
	return &cp
}
