package haproxy

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const miniHeader = "# pxname,svname,scur,smax,slim,stot,bin,bout,dreq,dresp,ereq,status,pid,iid,sid,type,rate,rate_lim,rate_max,\n"

func TestParseStatCSV_Fixture(t *testing.T) {
	stats, err := ParseStatCSV(readFixture(t, "show_stat.csv"))
	require.NoError(t, err)
	require.Len(t, stats, 12)

	fe, ok := stats[0].(*FrontendStatistic)
	require.True(t, ok, "record 0 is %T", stats[0])
	require.Equal(t, "http-frontend", fe.Pxname)
	require.Equal(t, StatusOpen, fe.Status)
	require.Equal(t, uint64(12), fe.Stot)
	require.NotNil(t, fe.ReqTot)
	require.Equal(t, uint64(12), *fe.ReqTot)

	srv, ok := stats[1].(*ServerStatistic)
	require.True(t, ok, "record 1 is %T", stats[1])
	require.Equal(t, "http-backend-srv-1", srv.Svname)
	require.Nil(t, srv.Slim)
	require.Nil(t, srv.CheckCode)
	require.Equal(t, CheckL4OK, *srv.CheckStatus)

	be, ok := stats[2].(*BackendStatistic)
	require.True(t, ok, "record 2 is %T", stats[2])
	require.Equal(t, "http-backend", be.Pxname)

	ls, ok := stats[3].(*ListenerStatistic)
	require.True(t, ok, "record 3 is %T", stats[3])
	require.Equal(t, "sock-1", ls.Svname)

	counts := map[Role]int{}
	for _, s := range stats {
		counts[s.Role()]++
	}
	require.Equal(t, map[Role]int{RoleFrontend: 3, RoleBackend: 3, RoleServer: 3, RoleListener: 3}, counts)

	down := stats[10].(*ServerStatistic)
	require.Equal(t, StatusDown, down.Status)
	last, inProgress := down.CheckStatus.Last()
	require.True(t, inProgress)
	require.Equal(t, CheckL4CON, last)

	tcp := stats[7].(*FrontendStatistic)
	require.Nil(t, tcp.Hrsp2xx)
	require.Nil(t, tcp.ReqTot)
}

func TestParseStatJSON_MatchesCSV(t *testing.T) {
	fromCSV, err := ParseStatCSV(readFixture(t, "show_stat.csv"))
	require.NoError(t, err)

	fromJSON, err := ParseStatJSON(readFixture(t, "show_stat.json"))
	require.NoError(t, err)
	require.Len(t, fromJSON, 12)

	if diff := cmp.Diff(fromCSV, fromJSON); diff != "" {
		t.Errorf("statistics mismatch (-csv +json):\n%s", diff)
	}
}

func TestParseStatCSV_MissingMarker(t *testing.T) {
	for _, data := range []string{"", "pxname,svname,type\n", " # pxname,svname,type\n"} {
		_, err := ParseStatCSV([]byte(data))
		var csvErr *StatCSVError
		require.ErrorAs(t, err, &csvErr)
		require.Equal(t, CSVMissingMarker, csvErr.Kind)
	}
}

func TestParseStatCSV_HeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		kind   StatCSVErrorKind
		column string
	}{
		{"empty body", "#", CSVHeaderMissing, ""},
		{"no type", "# pxname,svname,status\n", CSVColumnMissing, "type"},
		{"no svname", "# pxname,type,status\n", CSVColumnMissing, "svname"},
		{"neither", "# pxname,status\n", CSVColumnMissing, "type"},
		{"bad utf8", "# pxname,svname,type,\xff\n", CSVHeaderDecodeFailed, ""},
		{"bad quoting", "# pxname,\"svname,type\n", CSVParseFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatCSV([]byte(tt.data))
			var csvErr *StatCSVError
			require.ErrorAs(t, err, &csvErr)
			require.Equal(t, tt.kind, csvErr.Kind)
			require.Equal(t, tt.column, csvErr.Column)
			if tt.column != "" {
				require.Contains(t, err.Error(), tt.column+" missing")
			}
		})
	}
}

func TestParseStatCSV_HeaderOrderIndependent(t *testing.T) {
	data := "# type,pxname,status,svname,scur,smax,slim,stot,bin,bout,dreq,dresp,ereq,pid,iid,rate,rate_lim,rate_max\n" +
		"0,web,OPEN,FRONTEND,1,2,100,3,4,5,0,0,0,1,2,0,0,1\n"

	stats, err := ParseStatCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, "web", stats[0].ProxyName())
}

func frontendRow(svname string) string {
	return "web," + svname + ",1,2,100,3,4,5,0,0,0,OPEN,1,2,,0,0,0,1,\n"
}

func TestParseStatCSV_SvnameMismatch(t *testing.T) {
	_, err := ParseStatCSV([]byte(miniHeader + frontendRow("FRONTEND") + frontendRow("BACKEND")))

	var csvErr *StatCSVError
	require.ErrorAs(t, err, &csvErr)
	require.Equal(t, CSVRowValueMismatch, csvErr.Kind)
	require.Equal(t, 2, csvErr.Row)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	require.Equal(t, "BACKEND", rowErr.Svname)
	require.Equal(t, SvnameFrontend, rowErr.Expected)
	require.Contains(t, err.Error(), "line:2 svname:BACKEND svname should eq FRONTEND")
}

func TestParseStatCSV_FrontendRow(t *testing.T) {
	stats, err := ParseStatCSV([]byte(miniHeader + frontendRow("FRONTEND")))
	require.NoError(t, err)
	require.Len(t, stats, 1)

	fe := stats[0].(*FrontendStatistic)
	require.Equal(t, "web", fe.Pxname)
	require.Equal(t, uint64(100), fe.Slim)
	require.Nil(t, fe.ReqTot)
}

func TestParseStatCSV_BackendSvnameMismatch(t *testing.T) {
	row := "app,FRONTEND,0,0,0,0,0,0,0,0,0,UP,1,3,,1,0,,0,\n"
	_, err := ParseStatCSV([]byte(miniHeader + row))

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	require.Equal(t, RowValueMismatch, rowErr.Kind)
	require.Equal(t, SvnameBackend, rowErr.Expected)
	require.Equal(t, 1, rowErr.Row)
}

func TestParseStatCSV_TypeDispatch(t *testing.T) {
	listener := "web,sock-1,1,2,100,3,4,5,0,0,0,OPEN,1,2,1,%s,,,,\n"

	tests := []struct {
		typ  string
		kind StatCSVErrorKind
	}{
		{"3", 0},
		{"4", CSVUnknownType},
		{"9", CSVUnknownType},
		{"", CSVUnknownType},
	}

	for _, tt := range tests {
		t.Run("type="+tt.typ, func(t *testing.T) {
			stats, err := ParseStatCSV([]byte(miniHeader + strings.Replace(listener, "%s", tt.typ, 1)))
			if tt.kind == 0 {
				require.NoError(t, err)
				require.Equal(t, RoleListener, stats[0].Role())
				return
			}
			var csvErr *StatCSVError
			require.ErrorAs(t, err, &csvErr)
			require.Equal(t, tt.kind, csvErr.Kind)
			require.Equal(t, 1, csvErr.Row)
		})
	}
}

func TestParseStatCSV_RowDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"not a number", "web,FRONTEND,many,2,100,3,4,5,0,0,0,OPEN,1,2,,0,0,0,1,\n"},
		{"negative", "web,FRONTEND,-1,2,100,3,4,5,0,0,0,OPEN,1,2,,0,0,0,1,\n"},
		{"required empty", "web,FRONTEND,1,2,100,,4,5,0,0,0,OPEN,1,2,,0,0,0,1,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatCSV([]byte(miniHeader + tt.row))
			var csvErr *StatCSVError
			require.ErrorAs(t, err, &csvErr)
			require.Equal(t, CSVRowDecodeFailed, csvErr.Kind)
			require.Equal(t, 1, csvErr.Row)
		})
	}
}

func TestParseStatCSV_ShortRow(t *testing.T) {
	_, err := ParseStatCSV([]byte(miniHeader + "web,FRONTEND,1\n"))

	var csvErr *StatCSVError
	require.ErrorAs(t, err, &csvErr)
	require.Equal(t, CSVCellMissing, csvErr.Kind)
	require.Equal(t, "type", csvErr.Column)
}

func TestParseStatCSV_UnknownStatusKept(t *testing.T) {
	row := "web,FRONTEND,1,2,100,3,4,5,0,0,0,STOPPING,1,2,,0,0,0,1,\n"
	stats, err := ParseStatCSV([]byte(miniHeader + row))
	require.NoError(t, err)

	status := stats[0].(*FrontendStatistic).Status
	require.Equal(t, Status("STOPPING"), status)
	require.False(t, status.Known())
	require.True(t, StatusOpen.Known())
}

func TestParseStatCSV_EmptyTextCells(t *testing.T) {
	row := ",FRONTEND,1,2,100,3,4,5,0,0,0,,1,2,,0,0,0,1,\n"
	stats, err := ParseStatCSV([]byte(miniHeader + row))
	require.NoError(t, err)

	fe := stats[0].(*FrontendStatistic)
	require.Equal(t, "", fe.Pxname)
	require.Equal(t, Status(""), fe.Status)
	require.False(t, fe.Status.Known())
}

func TestParseStatCSV_HeaderOnly(t *testing.T) {
	stats, err := ParseStatCSV([]byte(miniHeader))
	require.NoError(t, err)
	require.Empty(t, stats)
}

func TestParseStatJSON_Errors(t *testing.T) {
	item := func(name, typ, value string) string {
		return `{"objType":"Frontend","proxyId":2,"id":0,"field":{"pos":0,"name":"` + name +
			`"},"processNum":1,"tags":{"origin":"Key","nature":"Name","scope":"Service"},"value":{"type":"` +
			typ + `","value":` + value + `}}`
	}

	tests := []struct {
		name    string
		data    string
		kind    JSONErrorKind
		rowKind RowErrorKind
	}{
		{"malformed", `[[{]]`, JSONOutputDecodeFailed, 0},
		{"flat list", `[` + item("pxname", "str", `"web"`) + `]`, JSONOutputDecodeFailed, 0},
		{"unknown type", `[[` + item("type", "u32", "9") + `,` + item("svname", "str", `"x"`) + `]]`, JSONDecodeFailed, RowUnknownType},
		{"svname mismatch", `[[` + item("type", "u32", "1") + `,` + item("svname", "str", `"FRONTEND"`) + `]]`, JSONDecodeFailed, RowValueMismatch},
		{"missing counters", `[[` + item("type", "u32", "0") + `,` + item("svname", "str", `"FRONTEND"`) + `]]`, JSONDecodeFailed, RowDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatJSON([]byte(tt.data))
			var jsonErr *StatJSONError
			require.ErrorAs(t, err, &jsonErr)
			require.Equal(t, tt.kind, jsonErr.Kind)
			if tt.rowKind != 0 {
				var rowErr *RowError
				require.ErrorAs(t, err, &rowErr)
				require.Equal(t, tt.rowKind, rowErr.Kind)
				require.Equal(t, 1, rowErr.Row)
			}
		})
	}
}

func TestCheckStatus(t *testing.T) {
	base, inProgress := CheckL7OK.Last()
	require.False(t, inProgress)
	require.Equal(t, CheckL7OK, base)

	require.True(t, CheckLastL7OK.Known())
	require.False(t, CheckStatus("L9XYZ").Known())
}
