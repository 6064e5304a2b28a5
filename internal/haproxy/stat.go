package haproxy

import "strings"

// Expected svname values for frontend and backend rows.
const (
	SvnameFrontend = "FRONTEND"
	SvnameBackend  = "BACKEND"
)

// Role identifies which kind of proxy object a stat row describes.
type Role int

const (
	RoleFrontend Role = iota
	RoleBackend
	RoleServer
	RoleListener
)

func (r Role) String() string {
	switch r {
	case RoleFrontend:
		return "frontend"
	case RoleBackend:
		return "backend"
	case RoleServer:
		return "server"
	case RoleListener:
		return "listener"
	default:
		return "unknown"
	}
}

// roles maps the wire "type" discriminant to a Role. Both the CSV and the
// JSON decoders dispatch through it. Listeners are reported as type 3
// ("socket" in the HAProxy management guide).
var roles = map[string]Role{
	"0": RoleFrontend,
	"1": RoleBackend,
	"2": RoleServer,
	"3": RoleListener,
}

// Statistic is one row of "show stat" output. The concrete type is one of
// *FrontendStatistic, *BackendStatistic, *ServerStatistic or
// *ListenerStatistic.
type Statistic interface {
	Role() Role
	ProxyName() string
}

// FrontendStatistic holds the counters of a frontend.
type FrontendStatistic struct {
	Pxname string `stat:"pxname"`

	Scur uint64 `stat:"scur"`
	Smax uint64 `stat:"smax"`
	Slim uint64 `stat:"slim"`
	Stot uint64 `stat:"stot"`

	Bin  uint64 `stat:"bin"`
	Bout uint64 `stat:"bout"`

	Dreq  uint64 `stat:"dreq"`
	Dresp uint64 `stat:"dresp"`
	Ereq  uint64 `stat:"ereq"`

	Status Status `stat:"status"`

	Pid uint64 `stat:"pid"`
	Iid uint64 `stat:"iid"`

	Rate    uint64 `stat:"rate"`
	RateLim uint64 `stat:"rate_lim"`
	RateMax uint64 `stat:"rate_max"`

	Hrsp1xx   *uint64 `stat:"hrsp_1xx"`
	Hrsp2xx   *uint64 `stat:"hrsp_2xx"`
	Hrsp3xx   *uint64 `stat:"hrsp_3xx"`
	Hrsp4xx   *uint64 `stat:"hrsp_4xx"`
	Hrsp5xx   *uint64 `stat:"hrsp_5xx"`
	HrspOther *uint64 `stat:"hrsp_other"`

	ReqRate    *uint64 `stat:"req_rate"`
	ReqRateMax *uint64 `stat:"req_rate_max"`
	ReqTot     *uint64 `stat:"req_tot"`
}

// BackendStatistic holds the counters of a backend.
type BackendStatistic struct {
	Pxname string `stat:"pxname"`

	Qcur uint64 `stat:"qcur"`
	Qmax uint64 `stat:"qmax"`

	Scur uint64 `stat:"scur"`
	Smax uint64 `stat:"smax"`
	Slim uint64 `stat:"slim"`
	Stot uint64 `stat:"stot"`

	Bin  uint64 `stat:"bin"`
	Bout uint64 `stat:"bout"`

	Dreq  uint64 `stat:"dreq"`
	Dresp uint64 `stat:"dresp"`

	Econ  uint64 `stat:"econ"`
	Eresp uint64 `stat:"eresp"`

	Wretr  uint64 `stat:"wretr"`
	Wredis uint64 `stat:"wredis"`

	Status Status `stat:"status"`
	Weight uint64 `stat:"weight"`
	Act    uint64 `stat:"act"`
	Bck    uint64 `stat:"bck"`

	Chkdown uint64 `stat:"chkdown"`
	Lastchg uint64 `stat:"lastchg"`
	// Not reported by 1.7.
	Downtime *uint64 `stat:"downtime"`

	Pid uint64 `stat:"pid"`
	Iid uint64 `stat:"iid"`

	Lbtot uint64 `stat:"lbtot"`

	Rate    uint64 `stat:"rate"`
	RateMax uint64 `stat:"rate_max"`

	Hrsp1xx   *uint64 `stat:"hrsp_1xx"`
	Hrsp2xx   *uint64 `stat:"hrsp_2xx"`
	Hrsp3xx   *uint64 `stat:"hrsp_3xx"`
	Hrsp4xx   *uint64 `stat:"hrsp_4xx"`
	Hrsp5xx   *uint64 `stat:"hrsp_5xx"`
	HrspOther *uint64 `stat:"hrsp_other"`

	ReqTot *uint64 `stat:"req_tot"`

	CliAbrt uint64 `stat:"cli_abrt"`
	SrvAbrt uint64 `stat:"srv_abrt"`
}

// ServerStatistic holds the counters of a server within a backend.
type ServerStatistic struct {
	Pxname string `stat:"pxname"`
	Svname string `stat:"svname"`

	Qcur uint64 `stat:"qcur"`
	Qmax uint64 `stat:"qmax"`

	Scur uint64  `stat:"scur"`
	Smax uint64  `stat:"smax"`
	Slim *uint64 `stat:"slim"`
	Stot uint64  `stat:"stot"`

	Bin  uint64 `stat:"bin"`
	Bout uint64 `stat:"bout"`

	Dresp uint64 `stat:"dresp"`

	Econ  uint64 `stat:"econ"`
	Eresp uint64 `stat:"eresp"`

	Wretr  uint64 `stat:"wretr"`
	Wredis uint64 `stat:"wredis"`

	Status Status `stat:"status"`
	Weight uint64 `stat:"weight"`
	Act    uint64 `stat:"act"`
	Bck    uint64 `stat:"bck"`

	Chkfail  *uint64 `stat:"chkfail"`
	Chkdown  *uint64 `stat:"chkdown"`
	Lastchg  *uint64 `stat:"lastchg"`
	Downtime *uint64 `stat:"downtime"`

	Qlimit *uint64 `stat:"qlimit"`

	Pid uint64 `stat:"pid"`
	Iid uint64 `stat:"iid"`
	Sid uint64 `stat:"sid"`

	Throttle *uint64 `stat:"throttle"`
	Lbtot    uint64  `stat:"lbtot"`
	Tracked  *uint64 `stat:"tracked"`

	Rate    uint64 `stat:"rate"`
	RateMax uint64 `stat:"rate_max"`

	CheckStatus   *CheckStatus `stat:"check_status"`
	CheckCode     *uint64      `stat:"check_code"`
	CheckDuration *uint64      `stat:"check_duration"`

	Hrsp1xx   *uint64 `stat:"hrsp_1xx"`
	Hrsp2xx   *uint64 `stat:"hrsp_2xx"`
	Hrsp3xx   *uint64 `stat:"hrsp_3xx"`
	Hrsp4xx   *uint64 `stat:"hrsp_4xx"`
	Hrsp5xx   *uint64 `stat:"hrsp_5xx"`
	HrspOther *uint64 `stat:"hrsp_other"`

	// Absent from the JSON output.
	Hanafail string `stat:"hanafail,omitempty"`

	CliAbrt uint64 `stat:"cli_abrt"`
	SrvAbrt uint64 `stat:"srv_abrt"`
}

// ListenerStatistic holds the counters of a listening socket.
type ListenerStatistic struct {
	Pxname string `stat:"pxname"`
	Svname string `stat:"svname"`

	Scur uint64 `stat:"scur"`
	Smax uint64 `stat:"smax"`
	Slim uint64 `stat:"slim"`
	Stot uint64 `stat:"stot"`

	Bin  uint64 `stat:"bin"`
	Bout uint64 `stat:"bout"`

	Dreq  uint64 `stat:"dreq"`
	Dresp uint64 `stat:"dresp"`
	Ereq  uint64 `stat:"ereq"`

	Status Status `stat:"status"`

	Pid uint64 `stat:"pid"`
	Iid uint64 `stat:"iid"`
	Sid uint64 `stat:"sid"`
}

func (*FrontendStatistic) Role() Role { return RoleFrontend }
func (*BackendStatistic) Role() Role  { return RoleBackend }
func (*ServerStatistic) Role() Role   { return RoleServer }
func (*ListenerStatistic) Role() Role { return RoleListener }

func (s *FrontendStatistic) ProxyName() string { return s.Pxname }
func (s *BackendStatistic) ProxyName() string  { return s.Pxname }
func (s *ServerStatistic) ProxyName() string   { return s.Pxname }
func (s *ListenerStatistic) ProxyName() string { return s.Pxname }

// Status is the state of a proxy object. Values outside the known set are
// kept verbatim.
type Status string

const (
	StatusUp      Status = "UP"
	StatusDown    Status = "DOWN"
	StatusOpen    Status = "OPEN"
	StatusFull    Status = "FULL"
	StatusNoLB    Status = "NOLB"
	StatusMaint   Status = "MAINT"
	StatusDrain   Status = "DRAIN"
	StatusNoCheck Status = "no check"
)

// Known reports whether s is one of the declared states.
func (s Status) Known() bool {
	switch s {
	case StatusUp, StatusDown, StatusOpen, StatusFull, StatusNoLB,
		StatusMaint, StatusDrain, StatusNoCheck:
		return true
	}
	return false
}

// CheckStatus is the result of the last health check. A "* " prefix marks a
// check that is still in progress, reporting the previous result.
type CheckStatus string

const (
	CheckL4OK       CheckStatus = "L4OK"
	CheckL4TOUT     CheckStatus = "L4TOUT"
	CheckL4CON      CheckStatus = "L4CON"
	CheckL6OK       CheckStatus = "L6OK"
	CheckL7OK       CheckStatus = "L7OK"
	CheckL7OKC      CheckStatus = "L7OKC"
	CheckL7STS      CheckStatus = "L7STS"
	CheckL7TOUT     CheckStatus = "L7TOUT"
	CheckSOCKERR    CheckStatus = "SOCKERR"
	CheckLastL4TOUT CheckStatus = "* L4TOUT"
	CheckLastL4CON  CheckStatus = "* L4CON"
	CheckLastL7OK   CheckStatus = "* L7OK"
)

const lastCheckPrefix = "* "

// Last returns the status with any in-progress prefix removed, and whether
// the prefix was present.
func (c CheckStatus) Last() (CheckStatus, bool) {
	s, ok := strings.CutPrefix(string(c), lastCheckPrefix)
	return CheckStatus(s), ok
}

// Known reports whether c, with or without the in-progress prefix, is one of
// the declared results.
func (c CheckStatus) Known() bool {
	base, _ := c.Last()
	switch base {
	case CheckL4OK, CheckL4TOUT, CheckL4CON, CheckL6OK, CheckL7OK,
		CheckL7OKC, CheckL7STS, CheckL7TOUT, CheckSOCKERR:
		return true
	}
	return false
}

// decodeStatistic dispatches a row's attributes on its "type" value and
// binds them to the matching record. row is 1-based.
func decodeStatistic(row int, attrs map[string]any) (Statistic, error) {
	typ, _ := attrs["type"].(string)
	svname, _ := attrs["svname"].(string)

	role, ok := roles[typ]
	if !ok {
		return nil, &RowError{Kind: RowUnknownType, Row: row, Type: typ}
	}

	var (
		stat Statistic
		err  error
	)
	switch role {
	case RoleFrontend:
		if svname != SvnameFrontend {
			return nil, &RowError{Kind: RowValueMismatch, Row: row, Type: typ, Svname: svname, Expected: SvnameFrontend}
		}
		stat, err = bindStatistic[FrontendStatistic](attrs)
	case RoleBackend:
		if svname != SvnameBackend {
			return nil, &RowError{Kind: RowValueMismatch, Row: row, Type: typ, Svname: svname, Expected: SvnameBackend}
		}
		stat, err = bindStatistic[BackendStatistic](attrs)
	case RoleServer:
		stat, err = bindStatistic[ServerStatistic](attrs)
	case RoleListener:
		stat, err = bindStatistic[ListenerStatistic](attrs)
	}
	if err != nil {
		return nil, &RowError{Kind: RowDecodeFailed, Row: row, Type: typ, Err: err}
	}
	return stat, nil
}

// bindStatistic binds attrs to T and returns it as a Statistic through *T.
func bindStatistic[T any, PT interface {
	*T
	Statistic
}](attrs map[string]any) (Statistic, error) {
	v, err := bind[T](attrs)
	if err != nil {
		return nil, err
	}
	return PT(&v), nil
}
