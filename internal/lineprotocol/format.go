package lineprotocol

import (
	"fmt"
	"sort"
	"strings"

	"haproxy-telegraf-plugin/internal/haproxy"

	"github.com/go-viper/mapstructure/v2"
)

const measurementPrefix = "haproxy_"

// FormatStats converts decoded stat records into InfluxDB line protocol,
// one line per record in input order.
func FormatStats(stats []haproxy.Statistic, server string) (string, error) {
	lines := make([]string, 0, len(stats))
	for _, s := range stats {
		attrs, err := recordFields(s)
		if err != nil {
			return "", fmt.Errorf("flattening %s %s: %w", s.Role(), s.ProxyName(), err)
		}

		tags := []tag{{"server", server}, {"proxy", s.ProxyName()}}
		if sv, ok := attrs["svname"].(string); ok {
			tags = append(tags, tag{"sv", sv})
		}
		delete(attrs, "pxname")
		delete(attrs, "svname")

		if line := formatLine(measurementPrefix+s.Role().String(), tags, fieldValues(attrs)); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// FormatInfo converts decoded process information into a single line.
func FormatInfo(info *haproxy.Info, server string) string {
	tags := []tag{{"server", server}}
	if info.Version != nil {
		tags = append(tags, tag{"version", info.Version.String()})
	}

	fields := map[string]string{
		"nbproc":      intField(info.Nbproc),
		"process_num": intField(info.ProcessNum),
		"pid":         intField(info.Pid),
		"uptime_sec":  intField(info.UptimeSec),
	}
	optional := map[string]*uint64{
		"nbthread":   info.Nbthread,
		"memmax_mb":  info.MemmaxMB,
		"maxsock":    info.Maxsock,
		"maxconn":    info.Maxconn,
		"curr_conns": info.CurrConns,
		"cum_conns":  info.CumConns,
		"cum_req":    info.CumReq,
	}
	for name, v := range optional {
		if v != nil {
			fields[name] = intField(*v)
		}
	}
	return formatLine(measurementPrefix+"info", tags, fields)
}

type tag struct {
	key, value string
}

func formatLine(measurement string, tags []tag, fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(measurement)
	for _, t := range tags {
		if t.value == "" {
			continue
		}
		fmt.Fprintf(&b, ",%s=%s", t.key, escapeTagValue(t.value))
	}

	// Sorted for deterministic output
	fieldParts := make([]string, 0, len(fields))
	for name, value := range fields {
		fieldParts = append(fieldParts, cleanFieldName(name)+"="+value)
	}
	sort.Strings(fieldParts)

	return b.String() + " " + strings.Join(fieldParts, ",")
}

// recordFields flattens a record into its wire field names.
func recordFields(s haproxy.Statistic) (map[string]any, error) {
	var attrs map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "stat",
		Result:  &attrs,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(s); err != nil {
		return nil, err
	}
	return attrs, nil
}

// fieldValues renders counters as integers and states as strings. Unset
// optional counters are left out.
func fieldValues(attrs map[string]any) map[string]string {
	fields := make(map[string]string, len(attrs))
	for name, v := range attrs {
		switch v := v.(type) {
		case uint64:
			fields[name] = intField(v)
		case *uint64:
			if v != nil {
				fields[name] = intField(*v)
			}
		case haproxy.Status:
			fields[name] = stringField(string(v))
		case *haproxy.CheckStatus:
			if v != nil {
				fields[name] = stringField(string(*v))
			}
		case string:
			if v != "" {
				fields[name] = stringField(v)
			}
		}
	}
	return fields
}

func intField(v uint64) string {
	return fmt.Sprintf("%di", v)
}

func stringField(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// cleanFieldName makes HAProxy field names safe InfluxDB field keys.
//
//	"Uptime_sec" → "uptime_sec"
//	"Ulimit-n"   → "ulimit_n"
func cleanFieldName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "-", "_"))
}

// escapeTagValue escapes special characters in InfluxDB line protocol tag values.
func escapeTagValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, " ", `\ `)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "=", `\=`)
	return s
}
