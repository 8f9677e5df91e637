package metrics

// Result labels shared by invocation and subgraph metrics.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ResultLabel maps an error to a result label.
func ResultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
