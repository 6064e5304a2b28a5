package haproxy

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const releaseDateField = "Release_date"

// Info is the decoded output of "show info".
type Info struct {
	Name        string          `stat:"Name"`
	Version     *semver.Version `stat:"Version,required"`
	ReleaseDate time.Time       `stat:"Release_date"`
	Nbthread    *uint64         `stat:"Nbthread"`
	Nbproc      uint64          `stat:"Nbproc"`
	ProcessNum  uint64          `stat:"Process_num"`
	Pid         uint64          `stat:"Pid"`
	Uptime      time.Duration   `stat:"Uptime"`
	UptimeSec   uint64          `stat:"Uptime_sec"`
	MemmaxMB    *uint64         `stat:"Memmax_MB"`
	Maxsock     *uint64         `stat:"Maxsock"`
	Maxconn     *uint64         `stat:"Maxconn"`
	CurrConns   *uint64         `stat:"CurrConns"`
	CumConns    *uint64         `stat:"CumConns"`
	CumReq      *uint64         `stat:"CumReq"`
	Node        string          `stat:"node,omitempty"`
}

// ParseInfo decodes "Key: value" lines.
func ParseInfo(data []byte) (*Info, error) {
	attrs := make(map[string]any)
	err := readLines(data, func(line string) {
		k, v, _ := strings.Cut(line, ": ")
		if k == releaseDateField {
			v = normalizeReleaseDate(v)
		}
		if v != "" {
			attrs[k] = v
		}
	})
	if err != nil {
		return nil, &InfoError{Kind: InfoLinesReadFailed, Err: err}
	}

	info, err := bind[Info](attrs)
	if err != nil {
		return nil, &InfoError{Kind: InfoValueDecodeFailed, Err: err}
	}
	return &info, nil
}

// ParseInfoJSON decodes the output of "show info json".
func ParseInfoJSON(data []byte) (*Info, error) {
	var items []jsonItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &InfoJSONError{Kind: JSONOutputDecodeFailed, Err: err}
	}

	attrs := pivot(items)
	if s, ok := attrs[releaseDateField].(string); ok {
		attrs[releaseDateField] = normalizeReleaseDate(s)
	}

	info, err := bind[Info](attrs)
	if err != nil {
		return nil, &InfoJSONError{Kind: JSONDecodeFailed, Err: err}
	}
	return &info, nil
}

// normalizeReleaseDate turns "2022/01/14" into "2022-01-14".
func normalizeReleaseDate(s string) string {
	return strings.Replace(s, "/", "-", 3)
}
