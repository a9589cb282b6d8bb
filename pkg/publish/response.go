package publish

import (
	"fmt"
	"strings"
)

// ResponseKind tags the shape of an upsert response.
type ResponseKind int

const (
	ResponseAbsent ResponseKind = iota
	ResponseSingle
	ResponseList
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseAbsent:
		return "absent"
	case ResponseSingle:
		return "single"
	case ResponseList:
		return "list"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Result is the outcome for one upserted record.
type Result struct {
	FullName string
	Created  bool
	Success  bool
	Errors   []ResultError
}

// ResultError is one error the remote side attached to a record.
type ResultError struct {
	StatusCode string
	Message    string
	Fields     []string
}

func (e ResultError) String() string {
	s := e.Message
	if e.StatusCode != "" {
		s = e.StatusCode + ": " + s
	}
	if len(e.Fields) > 0 {
		s += " [" + strings.Join(e.Fields, ", ") + "]"
	}
	return s
}

// Messages flattens the record's errors for logging.
func (r Result) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.String())
	}
	return msgs
}

// Response is an upsert response decoded once at the transport boundary.
// Only the field matching Kind is meaningful.
type Response struct {
	Kind   ResponseKind
	Single Result
	List   []Result
}

// FromResults shapes decoded records the way the remote API reports them:
// nothing, a single object, or a list.
func FromResults(results []Result) Response {
	switch len(results) {
	case 0:
		return Response{Kind: ResponseAbsent}
	case 1:
		return Response{Kind: ResponseSingle, Single: results[0]}
	default:
		return Response{Kind: ResponseList, List: results}
	}
}
