package haproxy

import "fmt"

// EnvErrorKind classifies an EnvError.
type EnvErrorKind int

const (
	// EnvLinesReadFailed means the response could not be split into lines.
	EnvLinesReadFailed EnvErrorKind = iota + 1
)

// EnvError is returned by ParseEnv.
type EnvError struct {
	Kind EnvErrorKind
	Err  error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("decoding env: reading lines: %v", e.Err)
}

func (e *EnvError) Unwrap() error { return e.Err }

// InfoErrorKind classifies an InfoError.
type InfoErrorKind int

const (
	// InfoLinesReadFailed means the response could not be split into lines.
	InfoLinesReadFailed InfoErrorKind = iota + 1
	// InfoValueDecodeFailed means the fields could not be bound to Info.
	InfoValueDecodeFailed
)

// InfoError is returned by ParseInfo.
type InfoError struct {
	Kind InfoErrorKind
	Err  error
}

func (e *InfoError) Error() string {
	switch e.Kind {
	case InfoLinesReadFailed:
		return fmt.Sprintf("decoding info: reading lines: %v", e.Err)
	default:
		return fmt.Sprintf("decoding info: %v", e.Err)
	}
}

func (e *InfoError) Unwrap() error { return e.Err }

// JSONErrorKind classifies the JSON decode errors.
type JSONErrorKind int

const (
	// JSONOutputDecodeFailed means the field-list envelope itself is malformed.
	JSONOutputDecodeFailed JSONErrorKind = iota + 1
	// JSONDecodeFailed means a pivoted item could not be bound to its record.
	JSONDecodeFailed
)

func (k JSONErrorKind) String() string {
	switch k {
	case JSONOutputDecodeFailed:
		return "output"
	case JSONDecodeFailed:
		return "value"
	default:
		return "unknown"
	}
}

// InfoJSONError is returned by ParseInfoJSON.
type InfoJSONError struct {
	Kind JSONErrorKind
	Err  error
}

func (e *InfoJSONError) Error() string {
	return fmt.Sprintf("decoding info json %s: %v", e.Kind, e.Err)
}

func (e *InfoJSONError) Unwrap() error { return e.Err }

// StatJSONError is returned by ParseStatJSON. For JSONDecodeFailed, Err is
// a *RowError.
type StatJSONError struct {
	Kind JSONErrorKind
	Err  error
}

func (e *StatJSONError) Error() string {
	return fmt.Sprintf("decoding stat json %s: %v", e.Kind, e.Err)
}

func (e *StatJSONError) Unwrap() error { return e.Err }

// StatCSVErrorKind classifies a StatCSVError.
type StatCSVErrorKind int

const (
	// CSVMissingMarker means the response does not begin with '#'.
	CSVMissingMarker StatCSVErrorKind = iota + 1
	// CSVParseFailed means the CSV reader rejected a record.
	CSVParseFailed
	// CSVHeaderMissing means the response ended before the header row.
	CSVHeaderMissing
	// CSVHeaderDecodeFailed means a header name is not valid UTF-8.
	CSVHeaderDecodeFailed
	// CSVColumnMissing means the header lacks the type or svname column.
	CSVColumnMissing
	// CSVCellMissing means a row is too short to hold type or svname.
	CSVCellMissing
	// CSVRowValueMismatch means a frontend or backend row has the wrong svname.
	CSVRowValueMismatch
	// CSVUnknownType means a row's type is not a known discriminant.
	CSVUnknownType
	// CSVRowDecodeFailed means a row could not be bound to its record.
	CSVRowDecodeFailed
)

// StatCSVError is returned by ParseStatCSV.
type StatCSVError struct {
	Kind StatCSVErrorKind
	// Row is the 1-based data row, zero for header level failures.
	Row int
	// Column names the missing column for CSVColumnMissing and CSVCellMissing.
	Column string
	Err    error
}

func (e *StatCSVError) Error() string {
	switch e.Kind {
	case CSVMissingMarker:
		return "decoding stat csv: response does not begin with '#'"
	case CSVParseFailed:
		return fmt.Sprintf("decoding stat csv: %v", e.Err)
	case CSVHeaderMissing:
		return "decoding stat csv: header row missing"
	case CSVHeaderDecodeFailed:
		return fmt.Sprintf("decoding stat csv: header: %v", e.Err)
	case CSVColumnMissing:
		return fmt.Sprintf("decoding stat csv: header: %s missing", e.Column)
	case CSVCellMissing:
		return fmt.Sprintf("decoding stat csv: line:%d %s missing", e.Row, e.Column)
	default:
		return fmt.Sprintf("decoding stat csv: %v", e.Err)
	}
}

func (e *StatCSVError) Unwrap() error { return e.Err }

// RowErrorKind classifies a RowError.
type RowErrorKind int

const (
	// RowValueMismatch means svname differs from the value the type requires.
	RowValueMismatch RowErrorKind = iota + 1
	// RowUnknownType means the type discriminant is not recognized.
	RowUnknownType
	// RowDecodeFailed means the attributes could not be bound to the record.
	RowDecodeFailed
)

// RowError reports a data row that could not be turned into a Statistic.
// It is shared by the CSV and JSON stat decoders.
type RowError struct {
	Kind RowErrorKind
	Row  int
	// Type is the raw discriminant of the row.
	Type string
	// Svname and Expected are set for RowValueMismatch.
	Svname   string
	Expected string
	Err      error
}

func (e *RowError) Error() string {
	switch e.Kind {
	case RowValueMismatch:
		return fmt.Sprintf("line:%d svname:%s svname should eq %s", e.Row, e.Svname, e.Expected)
	case RowUnknownType:
		return fmt.Sprintf("line:%d unknown type %q", e.Row, e.Type)
	default:
		return fmt.Sprintf("line:%d type:%s: %v", e.Row, e.Type, e.Err)
	}
}

func (e *RowError) Unwrap() error { return e.Err }

// SendOp names the transport step that failed.
type SendOp string

const (
	OpConnect SendOp = "connect"
	OpWrite   SendOp = "write"
	OpRead    SendOp = "read"
)

// SendError is returned by Client.Send.
type SendError struct {
	Op      SendOp
	Address string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Address, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
