package command

// Severity selects how a response is presented
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Field is a titled block inside a response
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Response is the platform-neutral result of a command. The gateway renders
// it as an embed.
type Response struct {
	Title    string
	Body     string
	Severity Severity
	Fields   []Field
	Footer   string
}

// AddField appends a field and returns the response for chaining
func (r Response) AddField(name, value string, inline bool) Response {
	r.Fields = append(r.Fields, Field{Name: name, Value: value, Inline: inline})
	return r
}

func success(title, body string) Response {
	return Response{Title: "✅ " + title, Body: body, Severity: SeveritySuccess}
}

func info(title, body string) Response {
	return Response{Title: title, Body: body, Severity: SeverityInfo}
}
